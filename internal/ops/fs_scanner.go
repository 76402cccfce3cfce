package ops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type ScanOptions struct {
	SkipDirs     []string
	SkipDirItems []string
	Ignore       *IgnoreList
	Logger       *slog.Logger
}

// NewFsScanner walks root depth first and emits an entry for every regular
// file. Directories produce no entries. Anything else (symlinks, devices,
// sockets) is emitted as StatusUnsupported so it can be counted, and is never
// followed or uploaded. Keys are relative to root with '/' separators.
func NewFsScanner(ctx context.Context, root string, opts ScanOptions) <-chan *EntryInfo {

	// convert the skip lists to maps for easier lookup
	skip_dirs := make(map[string]bool)
	skip_dir_items := make(map[string]bool)

	for _, dir := range opts.SkipDirs {
		skip_dirs[dir] = true
	}
	for _, item := range opts.SkipDirItems {
		skip_dir_items[item] = true
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := make(chan *EntryInfo, 10)
	fs := fsScanner{
		ctx:            ctx,
		out:            out,
		root:           root,
		skip_dirs:      skip_dirs,
		skip_dir_items: skip_dir_items,
		ignore:         opts.Ignore,
		logger:         logger,
	}
	go func() {
		defer close(fs.out)
		fs.run()
	}()

	return out
}

type fsScanner struct {
	ctx            context.Context
	out            chan<- *EntryInfo
	root           string
	skip_dirs      map[string]bool
	skip_dir_items map[string]bool
	ignore         *IgnoreList
	logger         *slog.Logger
}

// run walks the tree depth first with an explicit stack.
func (fs *fsScanner) run() {
	stack := []string{fs.root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		subdirs, ok := fs.scan(dir)
		if !ok {
			return
		}

		// push in reverse so the first subdirectory is visited next
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}

// scan emits the files in dir and returns the subdirectories to visit. It
// returns false if the context was cancelled.
func (fs *fsScanner) scan(dir string) ([]string, bool) {
	// a directory holding one of the marker items is skipped entirely
	for skip := range fs.skip_dir_items {
		if _, err := os.Lstat(filepath.Join(dir, skip)); err == nil {
			fs.logger.Debug("skipping marked directory", "dir", dir, "marker", skip)
			return nil, true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		fs.logger.Warn("failed to read directory", "dir", dir, "error", err)
		return nil, true
	}

	var subdirs []string
	for _, entry := range entries {
		// check for context done
		select {
		case <-fs.ctx.Done():
			return nil, false
		default:
		}

		fpath := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(fs.root, fpath)
		if err != nil {
			continue
		}
		key := filepath.ToSlash(rel)

		switch {
		case entry.IsDir():
			if fs.skip_dirs[entry.Name()] || fs.ignore.ShouldIgnore(key+"/") {
				fs.logger.Debug("skipping directory", "key", key)
				continue
			}
			subdirs = append(subdirs, fpath)

		case entry.Type().IsRegular():
			if fs.ignore.ShouldIgnore(key) {
				fs.logger.Debug("ignoring file", "key", key)
				continue
			}

			if !fs.emit(fs.regularFile(key, fpath, entry)) {
				return nil, false
			}

		default:
			fs.logger.Debug("skipping unsupported file type", "key", key, "type", entry.Type().String())
			if !fs.emit(&EntryInfo{
				Status: StatusUnsupported,
				Key:    key,
				Path:   fpath,
				Action: NoAction,
			}) {
				return nil, false
			}
		}
	}

	return subdirs, true
}

// regularFile builds the entry for a regular file. A file that can no longer
// be stat'ed, usually because it vanished during the walk, is marked Failed.
func (fs *fsScanner) regularFile(key, fpath string, entry os.DirEntry) *EntryInfo {
	info, err := entry.Info()
	if err != nil {
		fs.logger.Warn("failed to stat file", "key", key, "error", err)
		return &EntryInfo{
			Status:        StatusNew,
			Key:           key,
			Path:          fpath,
			Action:        Failed,
			ActionMessage: fmt.Sprintf("failed to stat %s: %s", key, err),
		}
	}

	return &EntryInfo{
		Status:  StatusNew,
		Key:     key,
		Path:    fpath,
		RawSize: info.Size(),
		ModTime: info.ModTime().Unix(),
		Action:  NoAction,
	}
}

func (fs *fsScanner) emit(info *EntryInfo) bool {
	return send(fs.ctx, fs.out, info)
}
