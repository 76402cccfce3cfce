package ops

import (
	"context"
	"strings"
)

// NewFileExtensionFilter drops files by extension. With include set only
// matching files pass; otherwise matching files are dropped. Extensions match
// case-insensitively, with or without the leading dot. Failed and
// unsupported entries always pass so they still reach the report.
func NewFileExtensionFilter(ctx context.Context, in <-chan *EntryInfo, extensions []string, include bool) <-chan *EntryInfo {

	var suffixes []string
	for _, extension := range extensions {
		if extension == "" {
			continue
		}
		suffixes = append(suffixes, "."+strings.TrimPrefix(strings.ToLower(extension), "."))
	}

	out := make(chan *EntryInfo, 10)
	filter := fileExtensionFilter{
		ctx:      ctx,
		in:       in,
		out:      out,
		suffixes: suffixes,
		include:  include,
	}
	go filter.run()

	return out
}

type fileExtensionFilter struct {
	ctx      context.Context
	in       <-chan *EntryInfo
	out      chan<- *EntryInfo
	suffixes []string
	include  bool
}

func (filter *fileExtensionFilter) run() {
	defer close(filter.out)

	for {
		// check the channels
		select {
		case <-filter.ctx.Done():
			return
		case info, ok := <-filter.in:
			if !ok {
				return
			}
			if !filter.process(info) {
				return
			}
		}
	}
}

func (filter *fileExtensionFilter) process(info *EntryInfo) bool {
	if !info.candidate() {
		return send(filter.ctx, filter.out, info)
	}

	if filter.matches(info.Key) != filter.include {
		return true
	}
	return send(filter.ctx, filter.out, info)
}

func (filter *fileExtensionFilter) matches(key string) bool {
	key = strings.ToLower(key)
	for _, suffix := range filter.suffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
