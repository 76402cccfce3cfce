package ops

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type vanishedEntry struct {
	name string
}

func (e vanishedEntry) Name() string               { return e.name }
func (e vanishedEntry) IsDir() bool                { return false }
func (e vanishedEntry) Type() fs.FileMode          { return 0 }
func (e vanishedEntry) Info() (fs.FileInfo, error) { return nil, fs.ErrNotExist }

func TestRegularFileStatFailureIsReported(t *testing.T) {
	scanner := fsScanner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	info := scanner.regularFile("blog/gone.html", "/site/blog/gone.html", vanishedEntry{name: "gone.html"})

	require.Equal(t, "blog/gone.html", info.Key)
	require.Equal(t, Failed, info.Action)
	require.Contains(t, info.ActionMessage, "blog/gone.html")
	require.False(t, info.candidate())
}

func TestRegularFileRecordsSizeAndModTime(t *testing.T) {
	root := t.TempDir()
	fpath := filepath.Join(root, "index.html")
	require.NoError(t, os.WriteFile(fpath, []byte("home"), 0644))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	scanner := fsScanner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	info := scanner.regularFile("index.html", fpath, entries[0])

	require.Equal(t, NoAction, info.Action)
	require.Equal(t, int64(4), info.RawSize)
	require.NotZero(t, info.ModTime)
}
