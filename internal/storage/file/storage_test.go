package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/file"
)

func TestStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	s, err := file.New(dir)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))

	_, err = s.Get(ctx, "cart")
	require.ErrorIs(t, err, domain.ErrStorageKeyNotFound)

	require.NoError(t, s.Put(ctx, "cart", []byte(`{"version":1}`)))
	got, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	require.Equal(t, `{"version":1}`, string(got))

	require.NoError(t, s.Put(ctx, "cart", []byte(`{"version":2}`)))
	got, err = s.Get(ctx, "cart")
	require.NoError(t, err)
	require.Equal(t, `{"version":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "cart"))
	require.NoError(t, s.Delete(ctx, "cart"))
	_, err = s.Get(ctx, "cart")
	require.ErrorIs(t, err, domain.ErrStorageKeyNotFound)
}

func TestStorage_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := file.New(dir)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, "cart", []byte("data")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "cart.json", entries[0].Name())
}

func TestStorage_InvalidKey(t *testing.T) {
	s, err := file.New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape", "a/b"} {
		err := s.Put(context.Background(), key, []byte("x"))
		require.True(t, errors.Is(err, file.ErrInvalidKey), "key %q", key)
	}
}

func TestStorage_CanceledContext(t *testing.T) {
	s, err := file.New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Put(ctx, "cart", []byte("x")), context.Canceled)
}

func TestStorage_PutReplacesWholeFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := file.New(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "cart", []byte(`{"version":1,"items":[{"id":"l1"}]}`)))
	require.NoError(t, s.Put(ctx, "cart", []byte(`{}`)))

	raw, err := os.ReadFile(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)
	require.Equal(t, `{}`, string(raw))
}

func TestStorage_PutFailsWhenDirRemoved(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	s, err := file.New(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	err = s.Put(context.Background(), "cart", []byte("x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "cart.json")
	require.Error(t, s.Ping(context.Background()))
}
