package ops

import (
	"context"
	"fmt"

	"github.com/studio1767/webotron/internal/etag"
)

// NewHashGenerator computes the S3-compatible ETag of each file, splitting it
// into chunkSize parts. Empty files are left without a hash.
func NewHashGenerator(ctx context.Context, in <-chan *EntryInfo, chunkSize int64) <-chan *EntryInfo {
	out := make(chan *EntryInfo, 10)
	hg := hashGenerator{
		ctx:       ctx,
		in:        in,
		out:       out,
		chunkSize: chunkSize,
	}
	go hg.run()

	return out
}

type hashGenerator struct {
	ctx       context.Context
	in        <-chan *EntryInfo
	out       chan<- *EntryInfo
	chunkSize int64
}

func (hg *hashGenerator) run() {
	defer close(hg.out)

	for {
		// check the channels
		select {
		case <-hg.ctx.Done():
			return
		case info, ok := <-hg.in:
			if !ok {
				return
			}
			if !hg.process(info) {
				return
			}
		}
	}
}

func (hg *hashGenerator) process(info *EntryInfo) bool {
	if !info.candidate() {
		return send(hg.ctx, hg.out, info)
	}

	tag, _, err := etag.Compute(info.Path, hg.chunkSize)
	if err != nil {
		info.Action = Failed
		info.ActionMessage = fmt.Sprintf("failed to generate hash for %s: %s", info.Key, err)
	} else {
		info.Hash = tag
	}

	return send(hg.ctx, hg.out, info)
}
