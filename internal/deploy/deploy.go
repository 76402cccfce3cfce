// Package deploy makes a bucket mirror a local directory tree, uploading only
// the files whose content differs from what the bucket already holds.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/studio1767/webotron/internal/etag"
	"github.com/studio1767/webotron/internal/manifest"
	"github.com/studio1767/webotron/internal/ops"
	"github.com/studio1767/webotron/internal/s3io"
	"github.com/studio1767/webotron/internal/site"
)

const (
	actionDeleted = "deleted"
	actionPlanned = "planned"
	actionFailed  = "failed"
)

type ErrInvalidRoot struct {
	path   string
	reason string
}

func (e *ErrInvalidRoot) Error() string {
	return fmt.Sprintf("invalid root directory %s: %s", e.path, e.reason)
}

type Options struct {
	ChunkSize int64
	Workers   int
	DryRun    bool
	Sniff     bool

	IncludeExtensions []string
	ExcludeExtensions []string
	SkipDirs          []string
	SkipDirItems      []string
	IgnoreFile        string
}

// DefaultOptions matches the defaults of a site file.
func DefaultOptions() Options {
	return Options{
		ChunkSize:  etag.DefaultChunkSize,
		Workers:    site.DefaultWorkers,
		IgnoreFile: site.DefaultIgnoreFile,
	}
}

func OptionsFromSite(s *site.Site) Options {
	return Options{
		ChunkSize:         s.ChunkSize,
		Workers:           s.Workers,
		Sniff:             s.SniffContentType,
		IncludeExtensions: s.IncludeExtensions,
		ExcludeExtensions: s.ExcludeExtensions,
		SkipDirs:          s.SkipDirs,
		SkipDirItems:      s.SkipDirItems,
		IgnoreFile:        s.IgnoreFile,
	}
}

// Syncer runs syncs against one object store. It holds no state between
// calls to Sync.
type Syncer struct {
	store  s3io.ObjectStore
	opts   Options
	logger *slog.Logger
}

func NewSyncer(store s3io.ObjectStore, opts Options, logger *slog.Logger) *Syncer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = etag.DefaultChunkSize
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Syncer{
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// Sync uploads every file under root whose ETag differs from the object with
// the same key in bucket. With deleteExtraneous set, objects that have no
// file under root are removed once all uploads have finished.
//
// Failures of single files are recorded in the report and do not stop the
// sync. An invalid bucket name or root, a missing bucket or a failed listing
// end it with an error before anything is uploaded or deleted.
func (sy *Syncer) Sync(ctx context.Context, root, bucket string, deleteExtraneous bool) (*Report, error) {
	if err := s3io.ValidateBucketName(bucket); err != nil {
		return nil, err
	}

	root, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	exists, err := sy.store.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, s3io.NewErrNoSuchBucket(bucket)
	}

	report := &Report{
		Bucket:    bucket,
		Root:      root,
		DryRun:    sy.opts.DryRun,
		ChunkSize: sy.opts.ChunkSize,
		StartTime: time.Now(),
	}

	// the whole bucket is listed before the first decision is made
	mani, err := manifest.Load(ctx, sy.store, bucket)
	if err != nil {
		return nil, err
	}
	report.RemoteObjects = mani.Len()
	report.RemoteBytes = mani.TotalBytes()
	sy.logger.Info("listed bucket", "bucket", bucket, "objects", mani.Len(), "size", humanize.Bytes(uint64(mani.TotalBytes())))

	// context to cancel the pipeline
	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for info := range sy.pipeline(pctx, root, bucket, mani) {
		report.addFile(info)
		sy.logEntry(info)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// every upload has returned once the pipeline is drained
	if deleteExtraneous {
		if err := sy.deleteExtraneous(ctx, root, bucket, report); err != nil {
			return nil, err
		}
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	return report, nil
}

func (sy *Syncer) pipeline(ctx context.Context, root, bucket string, mani *manifest.Manifest) <-chan *ops.EntryInfo {
	var ignore *ops.IgnoreList
	if sy.opts.IgnoreFile != "" {
		ignore = ops.NewIgnoreList(root, sy.opts.IgnoreFile)
		ignore.Load(sy.logger)
	}

	// build the file processing chain
	ch := ops.NewFsScanner(ctx, root, ops.ScanOptions{
		SkipDirs:     sy.opts.SkipDirs,
		SkipDirItems: sy.opts.SkipDirItems,
		Ignore:       ignore,
		Logger:       sy.logger,
	})

	if len(sy.opts.IncludeExtensions) > 0 {
		ch = ops.NewFileExtensionFilter(ctx, ch, sy.opts.IncludeExtensions, true)
	}
	if len(sy.opts.ExcludeExtensions) > 0 {
		ch = ops.NewFileExtensionFilter(ctx, ch, sy.opts.ExcludeExtensions, false)
	}

	// build the tail of the chain
	ch = ops.NewHashGenerator(ctx, ch, sy.opts.ChunkSize)
	ch = ops.NewStreamComparer(ctx, ch, mani)
	ch = ops.NewUploader(ctx, ch, sy.store, ops.UploadOptions{
		Bucket:    bucket,
		ChunkSize: sy.opts.ChunkSize,
		Workers:   sy.opts.Workers,
		Sniff:     sy.opts.Sniff,
		DryRun:    sy.opts.DryRun,
		Logger:    sy.logger,
	})

	return ch
}

func (sy *Syncer) logEntry(info *ops.EntryInfo) {
	switch info.Action {
	case ops.Uploaded:
		sy.logger.Info("uploaded", "key", info.Key, "status", info.Status, "size", humanize.Bytes(uint64(info.UploadedSize)))
	case ops.Planned:
		sy.logger.Info("would upload", "key", info.Key, "status", info.Status, "size", humanize.Bytes(uint64(info.RawSize)))
	case ops.Failed:
		sy.logger.Error("failed", "key", info.Key, "error", info.ActionMessage)
	default:
		sy.logger.Debug("skipped", "key", info.Key, "status", info.Status)
	}
}

// deleteExtraneous lists the bucket again and removes every object whose key
// does not name a file or directory under root. The listing must complete
// before anything is deleted.
func (sy *Syncer) deleteExtraneous(ctx context.Context, root, bucket string, report *Report) error {
	var extraneous []string

	err := sy.store.ListObjects(ctx, bucket, func(obj s3io.Object) error {
		if !existsLocally(root, obj.Key) {
			extraneous = append(extraneous, obj.Key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list bucket %s: %w", bucket, err)
	}

	for _, key := range extraneous {
		if err := ctx.Err(); err != nil {
			return err
		}

		result := DeleteResult{
			Key: key,
		}

		switch {
		case sy.opts.DryRun:
			result.Action = actionPlanned
			sy.logger.Info("would delete", "key", key)
		default:
			if err := sy.store.Delete(ctx, bucket, key); err != nil {
				result.Action = actionFailed
				result.Error = fmt.Sprintf("failed to delete %s: %s", key, err)
				sy.logger.Error("delete failed", "key", key, "error", err)
			} else {
				result.Action = actionDeleted
				sy.logger.Info("deleted", "key", key)
			}
		}

		report.addDelete(result)
	}

	return nil
}

// existsLocally reports if key maps to an entry under root. Symlinks count as
// present even when dangling. Keys that would resolve outside root never do.
func existsLocally(root, key string) bool {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return false
	}

	_, err := os.Lstat(filepath.Join(root, rel))
	return !errors.Is(err, os.ErrNotExist)
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		return "", &ErrInvalidRoot{path: root, reason: "no path given"}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &ErrInvalidRoot{path: root, reason: err.Error()}
	}

	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &ErrInvalidRoot{path: root, reason: err.Error()}
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return "", &ErrInvalidRoot{path: root, reason: err.Error()}
	}
	if !fi.IsDir() {
		return "", &ErrInvalidRoot{path: root, reason: "not a directory"}
	}

	return abs, nil
}
