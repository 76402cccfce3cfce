package site_test

import (
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/studio1767/webotron/internal/etag"
	"github.com/studio1767/webotron/internal/s3io"
	"github.com/studio1767/webotron/internal/site"
)

func TestParseKeepsDefaults(t *testing.T) {
	s, err := site.Parse([]byte("bucket: my-bucket.example\nroot: ./public\n"))
	require.NoError(t, err)

	require.Equal(t, "my-bucket.example", s.Bucket)
	require.Equal(t, "./public", s.Root)
	require.Equal(t, etag.DefaultChunkSize, s.ChunkSize)
	require.Equal(t, site.DefaultWorkers, s.Workers)
	require.Equal(t, site.DefaultIgnoreFile, s.IgnoreFile)
	require.False(t, s.Delete)
	require.NoError(t, s.Validate())
}

func TestParseAllFields(t *testing.T) {
	data := `
bucket: www.example.com
root: site
delete: true
chunk_size: 16777216
workers: 8
include_extensions: [html, .css]
exclude_extensions: [.map]
skip_dirs: [node_modules]
skip_dir_items: [.nobackup]
ignore_file: .deployignore
sniff_content_type: true
`
	s, err := site.Parse([]byte(data))
	require.NoError(t, err)

	require.True(t, s.Delete)
	require.Equal(t, int64(16*1024*1024), s.ChunkSize)
	require.Equal(t, 8, s.Workers)
	require.Equal(t, []string{"html", ".css"}, s.IncludeExtensions)
	require.Equal(t, []string{".map"}, s.ExcludeExtensions)
	require.Equal(t, []string{"node_modules"}, s.SkipDirs)
	require.Equal(t, []string{".nobackup"}, s.SkipDirItems)
	require.Equal(t, ".deployignore", s.IgnoreFile)
	require.True(t, s.SniffContentType)
	require.NoError(t, s.Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(s *site.Site){
		"no bucket":    func(s *site.Site) { s.Bucket = "" },
		"bad bucket":   func(s *site.Site) { s.Bucket = "My_Bucket" },
		"no root":      func(s *site.Site) { s.Root = "" },
		"small chunks": func(s *site.Site) { s.ChunkSize = 1024 },
		"no workers":   func(s *site.Site) { s.Workers = 0 },
	}

	for name, mutate := range cases {
		s := site.Default()
		s.Bucket = "my-bucket"
		s.Root = "."
		mutate(s)
		require.Error(t, s.Validate(), name)
	}
}

func TestValidateBadBucketIsTyped(t *testing.T) {
	s := site.Default()
	s.Bucket = "ab"
	s.Root = "."

	var invalid *s3io.ErrInvalidBucketName
	require.ErrorAs(t, s.Validate(), &invalid)
}

func TestLoad(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "site.yml")
	require.NoError(t, os.WriteFile(fpath, []byte("bucket: my-bucket\nroot: .\n"), 0644))

	s, err := site.Load(fpath)
	require.NoError(t, err)
	require.Equal(t, "my-bucket", s.Bucket)
}

func TestLoadMissing(t *testing.T) {
	_, err := site.Load(filepath.Join(t.TempDir(), "missing.yml"))

	var nosite *site.ErrNoSuchSite
	require.ErrorAs(t, err, &nosite)
}
