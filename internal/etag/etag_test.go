package etag_test

import (
	"bytes"
	"crypto/md5"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/studio1767/webotron/internal/etag"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	fpath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fpath, data, 0644))
	return fpath
}

func randomBytes(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	_, err := crand.Read(data)
	require.NoError(t, err)
	return data
}

func TestSingleChunkIsQuotedMD5(t *testing.T) {
	fpath := writeFile(t, "hello.txt", []byte("hello world"))

	tag, ok, err := etag.Compute(fpath, etag.DefaultChunkSize)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `"5eb63bbbe01eeed093cb22bb8f5acdc3"`, tag)
}

func TestEmptyFileHasNoTag(t *testing.T) {
	fpath := writeFile(t, "empty.txt", nil)

	tag, ok, err := etag.Compute(fpath, etag.DefaultChunkSize)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, tag)
}

func TestSingleChunkDependsOnlyOnContent(t *testing.T) {
	data := randomBytes(t, 4096)

	first := writeFile(t, "a.bin", data)
	second := writeFile(t, "b.css", data)
	require.NoError(t, os.Chmod(second, 0600))

	tag1, _, err := etag.Compute(first, etag.DefaultChunkSize)
	require.NoError(t, err)
	tag2, _, err := etag.Compute(second, etag.DefaultChunkSize)
	require.NoError(t, err)

	require.Equal(t, tag1, tag2)
}

func TestMultiChunkMatchesS3Format(t *testing.T) {
	data := randomBytes(t, 2500)

	var digests []byte
	for off := 0; off < len(data); off += 1000 {
		end := min(off+1000, len(data))
		sum := md5.Sum(data[off:end])
		digests = append(digests, sum[:]...)
	}
	sum := md5.Sum(digests)
	expected := fmt.Sprintf(`"%s-3"`, hex.EncodeToString(sum[:]))

	tag, ok, err := etag.FromReader(bytes.NewReader(data), 1000)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, expected, tag)
}

func TestExactChunkMultipleHasNoEmptyTrailingPart(t *testing.T) {
	data := randomBytes(t, 2000)

	tag, ok, err := etag.FromReader(bytes.NewReader(data), 1000)
	require.NoError(t, err)
	require.True(t, ok)
	require.Regexp(t, `^"[0-9a-f]{32}-2"$`, tag)

	// exactly one chunk stays in the single part format
	tag, _, err = etag.FromReader(bytes.NewReader(data), 2000)
	require.NoError(t, err)
	sum := md5.Sum(data)
	require.Equal(t, `"`+hex.EncodeToString(sum[:])+`"`, tag)
}

func TestSameBoundariesSameTag(t *testing.T) {
	data := randomBytes(t, 2500)
	fpath := writeFile(t, "site.js", data)

	fromFile, _, err := etag.Compute(fpath, 1000)
	require.NoError(t, err)
	fromReader, _, err := etag.FromReader(bytes.NewReader(data), 1000)
	require.NoError(t, err)
	require.Equal(t, fromFile, fromReader)

	// any chunk size covering the whole payload yields the single part tag
	tag1, _, err := etag.FromReader(bytes.NewReader(data), 2500)
	require.NoError(t, err)
	tag2, _, err := etag.FromReader(bytes.NewReader(data), etag.DefaultChunkSize)
	require.NoError(t, err)
	require.Equal(t, tag1, tag2)
}

func TestChunkCountChangesTag(t *testing.T) {
	data := randomBytes(t, 3000)

	tag1, _, err := etag.FromReader(bytes.NewReader(data), 1000)
	require.NoError(t, err)
	tag2, _, err := etag.FromReader(bytes.NewReader(data), 1500)
	require.NoError(t, err)

	require.Regexp(t, `-3"$`, tag1)
	require.Regexp(t, `-2"$`, tag2)
	require.NotEqual(t, tag1, tag2)
}

func TestInvalidChunkSize(t *testing.T) {
	_, _, err := etag.FromReader(bytes.NewReader([]byte("x")), 0)
	require.ErrorIs(t, err, etag.ErrInvalidChunkSize)
}

func TestChunks(t *testing.T) {
	require.Equal(t, int64(0), etag.Chunks(0, etag.DefaultChunkSize))
	require.Equal(t, int64(1), etag.Chunks(12, etag.DefaultChunkSize))
	require.Equal(t, int64(1), etag.Chunks(etag.DefaultChunkSize, etag.DefaultChunkSize))
	require.Equal(t, int64(3), etag.Chunks(20*1024*1024, etag.DefaultChunkSize))
}
