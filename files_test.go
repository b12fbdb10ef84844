package objectstore

import (
	"context"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

func TestStore_UploadFile(t *testing.T) {
	memfs := billy.NewInMemoryFS()
	require.NoError(t, memfs.WriteFile("local/report.json", []byte(`{"ok":true}`), 0o644))

	store, fake := newTestStore(t, WithFilesystem(memfs))

	md, err := store.UploadFile(context.Background(), "uploads/report.json", "local/report.json")
	require.NoError(t, err)
	assert.Contains(t, md.ContentType, "application/json")

	stored := fake.Object("uploads/report.json")
	require.NotNil(t, stored)
	assert.Equal(t, []byte(`{"ok":true}`), stored.Data)
}

func TestStore_UploadFileMissing(t *testing.T) {
	store, _ := newTestStore(t, WithFilesystem(billy.NewInMemoryFS()))

	_, err := store.UploadFile(context.Background(), "key", "no/such/file")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestStore_DownloadFile(t *testing.T) {
	memfs := billy.NewInMemoryFS()
	store, _ := newTestStore(t, WithFilesystem(memfs))
	ctx := context.Background()

	_, err := store.Put(ctx, "data/config.yaml", []byte("key: value\n"))
	require.NoError(t, err)

	require.NoError(t, store.DownloadFile(ctx, "data/config.yaml", "out/nested/config.yaml"))

	content, err := memfs.ReadFile("out/nested/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("key: value\n"), content)
}

func TestStore_DownloadFileMissingObject(t *testing.T) {
	store, _ := newTestStore(t, WithFilesystem(billy.NewInMemoryFS()))

	err := store.DownloadFile(context.Background(), "ghost.txt", "out/ghost.txt")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
