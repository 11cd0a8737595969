package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	info, err := store.Store(ctx, "statement_jan.pdf", "application/pdf", strings.NewReader("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "statement_jan.pdf", info.Name)
	assert.Equal(t, int64(13), info.Size)

	data, opened, err := ReadDocument(ctx, store, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Equal(t, info.ID, opened.ID)

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, store.Delete(ctx, info.ID))
	_, err = store.GetInfo(ctx, info.ID)
	assert.Error(t, err)
}

func TestLocalStorage_UnknownDocument(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestLocalStorage_SanitizesFilenames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := store.Store(context.Background(), "../../etc/passwd", "application/pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotContains(t, info.Path, "..")
	assert.NotContains(t, info.Path, "/")
}
