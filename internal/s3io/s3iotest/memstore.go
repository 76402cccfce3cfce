// Package s3iotest provides an in-memory s3io.ObjectStore for tests.
package s3iotest

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/studio1767/webotron/internal/etag"
	"github.com/studio1767/webotron/internal/s3io"
)

// StoredObject is what MemStore keeps for every key.
type StoredObject struct {
	Data        []byte
	ContentType string
	ETag        string
}

// MemStore keeps objects per bucket and computes ETags the way S3 does for
// uploads split into partSize parts. PageSize controls how many objects each
// listing page holds so pagination can be exercised.
type MemStore struct {
	mu sync.Mutex

	Buckets  map[string]map[string]*StoredObject
	PageSize int

	// failure injection
	UploadErr func(key string) error
	DeleteErr func(key string) error
	ListErr   func(page int) error

	Uploads []string
	Deletes []string
	Pages   int
}

// NewMemStore creates a store holding the named empty buckets.
func NewMemStore(buckets ...string) *MemStore {
	m := &MemStore{
		Buckets:  make(map[string]map[string]*StoredObject),
		PageSize: 1000,
	}
	for _, bucket := range buckets {
		m.Buckets[bucket] = make(map[string]*StoredObject)
	}
	return m
}

// Put stores data directly, bypassing upload accounting.
func (m *MemStore) Put(bucket, key string, data []byte, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Buckets[bucket][key] = &StoredObject{
		Data: data,
		ETag: tag,
	}
}

// Get returns the stored object, or nil.
func (m *MemStore) Get(bucket, key string) *StoredObject {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Buckets[bucket][key]
}

// Keys returns the sorted keys in bucket.
func (m *MemStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sortedKeys(bucket)
}

// Reset clears the recorded operations.
func (m *MemStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Uploads = nil
	m.Deletes = nil
	m.Pages = 0
}

func (m *MemStore) sortedKeys(bucket string) []string {
	keys := make([]string, 0, len(m.Buckets[bucket]))
	for key := range m.Buckets[bucket] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.Buckets[bucket]
	return ok, nil
}

func (m *MemStore) ListObjects(ctx context.Context, bucket string, fn func(s3io.Object) error) error {
	m.mu.Lock()
	objects, ok := m.Buckets[bucket]
	if !ok {
		m.mu.Unlock()
		return s3io.NewErrNoSuchBucket(bucket)
	}

	// snapshot the listing so fn can call back into the store
	var listing []s3io.Object
	for _, key := range m.sortedKeys(bucket) {
		obj := objects[key]
		listing = append(listing, s3io.Object{
			Key:          key,
			ETag:         obj.ETag,
			Size:         int64(len(obj.Data)),
			LastModified: time.Now(),
		})
	}
	m.mu.Unlock()

	page := 0
	for start := 0; start == 0 || start < len(listing); start += m.PageSize {
		page++
		m.mu.Lock()
		m.Pages++
		m.mu.Unlock()

		if m.ListErr != nil {
			if err := m.ListErr(page); err != nil {
				return err
			}
		}

		end := min(start+m.PageSize, len(listing))
		for _, obj := range listing[start:end] {
			if err := fn(obj); err != nil {
				return err
			}
		}
	}

	return nil
}

func (m *MemStore) Upload(ctx context.Context, bucket, key, path, contentType string, partSize int64) (int64, error) {
	if m.UploadErr != nil {
		if err := m.UploadErr(key); err != nil {
			return 0, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	// S3 stores an empty object with the MD5 of no bytes
	tag, ok, err := etag.Compute(path, partSize)
	if err != nil {
		return 0, err
	}
	if !ok {
		tag = `"d41d8cd98f00b204e9800998ecf8427e"`
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	objects, found := m.Buckets[bucket]
	if !found {
		return 0, s3io.NewErrNoSuchBucket(bucket)
	}
	objects[key] = &StoredObject{
		Data:        data,
		ContentType: contentType,
		ETag:        tag,
	}
	m.Uploads = append(m.Uploads, key)

	return int64(len(data)), nil
}

func (m *MemStore) Delete(ctx context.Context, bucket, key string) error {
	if m.DeleteErr != nil {
		if err := m.DeleteErr(key); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Buckets[bucket], key)
	m.Deletes = append(m.Deletes, key)

	return nil
}

var _ s3io.ObjectStore = (*MemStore)(nil)
