package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "uploads"))

	n, err := store.PutObject(ctx, "uploads", "f", strings.NewReader("A"), PutOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = store.PutObject(ctx, "uploads", "f", strings.NewReader("B"), PutOptions{ContentType: "text/plain"})
	require.NoError(t, err)

	obj, ok := store.Get("uploads", "f")
	require.True(t, ok)
	require.Equal(t, "B", string(obj.Data))
	require.Equal(t, "text/plain", obj.ContentType)
	require.Equal(t, []string{"f"}, store.List("uploads"))
}

func TestMemoryStoreEnsureContainerIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.EnsureContainer(ctx, "uploads"))
		}()
	}
	wg.Wait()

	_, err := store.PutObject(ctx, "uploads", "x", strings.NewReader("x"), PutOptions{})
	require.NoError(t, err)

	// a second ensure must not drop existing objects
	require.NoError(t, store.EnsureContainer(ctx, "uploads"))
	_, ok := store.Get("uploads", "x")
	require.True(t, ok)
}

func TestMemoryStoreMissingContainer(t *testing.T) {
	_, err := NewMemory().PutObject(context.Background(), "nope", "a", strings.NewReader("a"), PutOptions{})
	require.ErrorIs(t, err, ErrContainerNotFound)
}

func TestMemoryStoreFailedReadLeavesNoObject(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.EnsureContainer(ctx, "uploads"))

	boom := errors.New("boom")
	body := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(boom))

	_, err := store.PutObject(ctx, "uploads", "broken", body, PutOptions{})
	require.ErrorIs(t, err, boom)

	_, ok := store.Get("uploads", "broken")
	require.False(t, ok)
}

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "ftp"})
	require.Error(t, err)

	c, err := New(context.Background(), Config{Provider: "memory"})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, c)
}

func TestMinioEndpoint(t *testing.T) {
	for _, tc := range []struct {
		raw    string
		useSSL bool
		host   string
		secure bool
	}{
		{raw: "localhost:9000", host: "localhost:9000"},
		{raw: "localhost:9000", useSSL: true, host: "localhost:9000", secure: true},
		{raw: "http://localhost:9000", host: "localhost:9000"},
		{raw: "https://s3.example.com", host: "s3.example.com", secure: true},
	} {
		host, secure, err := minioEndpoint(tc.raw, tc.useSSL)
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.host, host)
		require.Equal(t, tc.secure, secure)
	}

	_, _, err := minioEndpoint("http://", false)
	require.Error(t, err)
}
