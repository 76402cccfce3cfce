// Package manifest records the state of a bucket at the start of a sync.
package manifest

import (
	"context"
	"fmt"

	"github.com/studio1767/webotron/internal/s3io"
)

// Manifest maps object keys to the ETag S3 reported for them. It is a
// snapshot: changes made to the bucket after Load are not observed.
type Manifest struct {
	entries map[string]string
	bytes   int64
}

func New() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// Load lists the whole bucket. A failure on any page fails the load; a
// partially listed bucket is never returned.
func Load(ctx context.Context, store s3io.ObjectStore, bucket string) (*Manifest, error) {
	m := New()

	err := store.ListObjects(ctx, bucket, func(obj s3io.Object) error {
		m.Add(obj.Key, obj.ETag)
		m.bytes += obj.Size
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, err)
	}

	return m, nil
}

func (m *Manifest) Add(key, tag string) {
	m.entries[key] = tag
}

func (m *Manifest) Lookup(key string) (string, bool) {
	tag, ok := m.entries[key]
	return tag, ok
}

func (m *Manifest) Len() int {
	return len(m.entries)
}

// TotalBytes is the size of all listed objects.
func (m *Manifest) TotalBytes() int64 {
	return m.bytes
}

// ShouldUpload is false only when key is present with exactly the same ETag.
// An empty tag never matches, so files without a tag are always uploaded.
func (m *Manifest) ShouldUpload(key, tag string) bool {
	if tag == "" {
		return true
	}
	remote, ok := m.entries[key]
	return !ok || remote != tag
}
