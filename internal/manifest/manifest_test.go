package manifest_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/stretchr/testify/require"
	"testing"

	"github.com/studio1767/webotron/internal/manifest"
	"github.com/studio1767/webotron/internal/s3io/s3iotest"
)

func TestShouldUpload(t *testing.T) {
	m := manifest.New()
	m.Add("index.html", `"abc"`)

	require.False(t, m.ShouldUpload("index.html", `"abc"`))
	require.True(t, m.ShouldUpload("index.html", `"abd"`))
	require.True(t, m.ShouldUpload("about.html", `"abc"`))

	// no tag available, e.g. an empty file
	require.True(t, m.ShouldUpload("index.html", ""))
}

func TestShouldUploadEmptyRemoteTag(t *testing.T) {
	m := manifest.New()
	m.Add("empty.txt", "")

	require.True(t, m.ShouldUpload("empty.txt", ""))
}

func TestLoadDrainsAllPages(t *testing.T) {
	store := s3iotest.NewMemStore("site")
	store.PageSize = 2
	for i := 0; i < 7; i++ {
		store.Put("site", fmt.Sprintf("page-%d.html", i), []byte("x"), fmt.Sprintf(`"tag-%d"`, i))
	}

	m, err := manifest.Load(context.Background(), store, "site")
	require.NoError(t, err)
	require.Equal(t, 7, m.Len())
	require.Equal(t, int64(7), m.TotalBytes())
	require.Equal(t, 4, store.Pages)

	tag, ok := m.Lookup("page-6.html")
	require.True(t, ok)
	require.Equal(t, `"tag-6"`, tag)
}

func TestLoadFailsOnPageError(t *testing.T) {
	store := s3iotest.NewMemStore("site")
	store.PageSize = 1
	for i := 0; i < 3; i++ {
		store.Put("site", fmt.Sprintf("f%d", i), nil, "")
	}

	boom := errors.New("throttled")
	store.ListErr = func(page int) error {
		if page == 3 {
			return boom
		}
		return nil
	}

	m, err := manifest.Load(context.Background(), store, "site")
	require.ErrorIs(t, err, boom)
	require.Nil(t, m)
}
