// Package etag computes S3-compatible entity tags for local content.
//
// S3 reports the MD5 of the object as its ETag for single-request uploads.
// Multipart uploads get the MD5 of the concatenated binary part digests
// followed by "-<parts>". Computing the same value locally lets a sync decide
// if an object changed without downloading it.
package etag

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize matches the multipart threshold and part size used for
// uploads so both sides split content on the same boundaries.
const DefaultChunkSize int64 = 8 * 1024 * 1024

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Compute returns the ETag for the file at path. The boolean is false for an
// empty file, which has no comparable ETag.
func Compute(path string, chunkSize int64) (string, bool, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer in.Close()

	return FromReader(in, chunkSize)
}

// FromReader reads source to the end in chunkSize pieces and returns its ETag.
func FromReader(source io.Reader, chunkSize int64) (string, bool, error) {
	if chunkSize <= 0 {
		return "", false, ErrInvalidChunkSize
	}

	var digests []byte
	chunks := 0

	h := md5.New()
	for {
		h.Reset()
		n, err := io.CopyN(h, source, chunkSize)
		if n > 0 {
			digests = h.Sum(digests)
			chunks++
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, err
		}
	}

	switch chunks {
	case 0:
		return "", false, nil
	case 1:
		return quote(hex.EncodeToString(digests)), true, nil
	}

	sum := md5.Sum(digests)
	return quote(fmt.Sprintf("%s-%d", hex.EncodeToString(sum[:]), chunks)), true, nil
}

// Chunks returns how many parts a payload of size bytes splits into.
func Chunks(size, chunkSize int64) int64 {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	return (size + chunkSize - 1) / chunkSize
}

func quote(s string) string {
	return `"` + s + `"`
}
