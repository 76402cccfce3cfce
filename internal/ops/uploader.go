package ops

import (
	"context"
	"fmt"
	"log/slog"

	humanize "github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/studio1767/webotron/internal/s3io"
)

type UploadOptions struct {
	Bucket    string
	ChunkSize int64
	Workers   int
	Sniff     bool
	DryRun    bool
	Logger    *slog.Logger
}

// NewUploader uploads files with StatusNew or StatusModified to the bucket.
// Uploads run on opts.Workers goroutines, so entries may leave in a different
// order than they arrived. A failed upload marks only its own entry as
// Failed. The output channel closes after every upload has returned.
func NewUploader(ctx context.Context, in <-chan *EntryInfo, store s3io.ObjectStore, opts UploadOptions) <-chan *EntryInfo {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	out := make(chan *EntryInfo, 10)
	ul := uploader{
		ctx:   ctx,
		in:    in,
		out:   out,
		store: store,
		opts:  opts,
	}
	go ul.run()

	return out
}

type uploader struct {
	ctx   context.Context
	in    <-chan *EntryInfo
	out   chan<- *EntryInfo
	store s3io.ObjectStore
	opts  UploadOptions
}

func (ul *uploader) run() {
	defer close(ul.out)

	var eg errgroup.Group
	for i := 0; i < ul.opts.Workers; i++ {
		eg.Go(func() error {
			ul.work()
			return nil
		})
	}
	eg.Wait()
}

func (ul *uploader) work() {
	for {
		// check the channels
		select {
		case <-ul.ctx.Done():
			return
		case info, ok := <-ul.in:
			if !ok {
				return
			}
			if !ul.process(info) {
				return
			}
		}
	}
}

func (ul *uploader) process(info *EntryInfo) bool {
	if !info.candidate() || info.Status == StatusOk {
		return send(ul.ctx, ul.out, info)
	}

	info.ContentType = ContentType(info.Key, info.Path, ul.opts.Sniff)

	if ul.opts.DryRun {
		info.Action = Planned
		return send(ul.ctx, ul.out, info)
	}

	nbytes, err := ul.store.Upload(ul.ctx, ul.opts.Bucket, info.Key, info.Path, info.ContentType, ul.opts.ChunkSize)
	if err != nil {
		info.Action = Failed
		info.ActionMessage = fmt.Sprintf("failed to upload %s: %s", info.Key, err)
		ul.opts.Logger.Warn("upload failed", "key", info.Key, "error", err)
	} else {
		info.Action = Uploaded
		info.UploadedSize = nbytes
		ul.opts.Logger.Debug("uploaded", "key", info.Key, "size", humanize.Bytes(uint64(nbytes)), "type", info.ContentType)
	}

	return send(ul.ctx, ul.out, info)
}
