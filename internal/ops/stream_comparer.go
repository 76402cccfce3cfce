package ops

import (
	"context"

	"github.com/studio1767/webotron/internal/manifest"
)

// NewStreamComparer decides for every hashed file if it has to be uploaded.
// The manifest must be fully loaded before the comparer is created; it is only
// read here, never refreshed.
//
//   - not in the manifest: StatusNew
//   - in the manifest with a different or missing hash: StatusModified
//   - in the manifest with an identical hash: StatusOk
func NewStreamComparer(ctx context.Context, in <-chan *EntryInfo, mani *manifest.Manifest) <-chan *EntryInfo {

	out := make(chan *EntryInfo, 10)
	sc := streamComparer{
		ctx:  ctx,
		in:   in,
		mani: mani,
		out:  out,
	}
	go sc.run()

	return out
}

type streamComparer struct {
	ctx  context.Context
	in   <-chan *EntryInfo
	mani *manifest.Manifest
	out  chan<- *EntryInfo
}

func (sc *streamComparer) run() {
	defer close(sc.out)

	for {
		select {
		case <-sc.ctx.Done():
			return
		case info, ok := <-sc.in:
			if !ok {
				return
			}
			if !sc.process(info) {
				return
			}
		}
	}
}

func (sc *streamComparer) process(info *EntryInfo) bool {
	if !info.candidate() {
		return send(sc.ctx, sc.out, info)
	}

	_, known := sc.mani.Lookup(info.Key)

	switch {
	case !sc.mani.ShouldUpload(info.Key, info.Hash):
		info.Status = StatusOk
	case known:
		info.Status = StatusModified
	default:
		info.Status = StatusNew
	}

	return send(sc.ctx, sc.out, info)
}
