package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	s, err := NewDiskStore(t.TempDir(), "/product-images/")
	require.NoError(t, err)
	return s
}

func TestUploadAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "products/1/2/front.jpg", []byte("front")))
	require.NoError(t, s.Upload(ctx, "products/1/2/back.jpg", []byte("back")))
	require.NoError(t, s.Upload(ctx, "products/1/3/other.jpg", []byte("other")))

	keys, err := s.List(ctx, "products/1/2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"products/1/2/front.jpg", "products/1/2/back.jpg"}, keys)
}

func TestListMissingPrefix(t *testing.T) {
	s := newTestStore(t)
	keys, err := s.List(context.Background(), "products/99")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "products/1/2/front.jpg", []byte("front")))
	require.NoError(t, s.Remove(ctx, []string{"products/1/2/front.jpg", "products/1/2/missing.jpg"}))

	keys, err := s.List(ctx, "products/1/2")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

// key 不能越出存储根目录
func TestKeyTraversalGuard(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(filepath.Join(dir, "store"), "/product-images")
	require.NoError(t, err)

	outside := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	// path.Clean 把 .. 折叠掉，写入仍落在根目录内
	require.NoError(t, s.Upload(context.Background(), "../secret.txt", []byte("overwrite")))
	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(data))

	err = s.Upload(context.Background(), "..", []byte("x"))
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "/product-images/products/1/2/a.jpg", s.PublicURL("products/1/2/a.jpg"))
	assert.Equal(t, "/product-images/a.jpg", s.PublicURL("/a.jpg"))
}
