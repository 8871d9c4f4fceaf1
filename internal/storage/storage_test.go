package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/designexport/internal/model"
)

func TestMemoryObjectStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryObjectStore("http://localhost:8080/")

	require.NoError(t, store.Upload(ctx, "p1/exports/1-logo-2x.png", []byte("png"), "image/png"))
	url := store.PublicURL("p1/exports/1-logo-2x.png")
	assert.Equal(t, "http://localhost:8080/objects/p1/exports/1-logo-2x.png", url)

	path, err := store.PathFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, "p1/exports/1-logo-2x.png", path)

	data, contentType, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.Remove(ctx, path, "never/uploaded"))
	assert.False(t, store.Exists(path))
	_, _, err = store.Get(ctx, path)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryObjectStoreRejectsForeignURL(t *testing.T) {
	store := NewMemoryObjectStore("http://localhost:8080")
	_, err := store.PathFromURL("https://cdn.example.com/bucket/a.png")
	assert.Error(t, err)
}

func TestMemoryAssetStoreListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAssetStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "mid", "new"} {
		_, err := store.Insert(ctx, model.ExportedAsset{
			DesignFileID: "df1",
			ProjectID:    "p1",
			Name:         name,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := store.Insert(ctx, model.ExportedAsset{DesignFileID: "df2", ProjectID: "p1", Name: "other", CreatedAt: base})
	require.NoError(t, err)

	byFile, err := store.ListByDesignFile(ctx, "df1")
	require.NoError(t, err)
	require.Len(t, byFile, 3)
	assert.Equal(t, "new", byFile[0].Name)
	assert.Equal(t, "old", byFile[2].Name)

	byProject, err := store.ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, byProject, 4)
}

func TestMemoryAssetStoreGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAssetStore()

	created, err := store.Insert(ctx, model.ExportedAsset{Name: "logo"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "logo", got.Name)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, created.ID), model.ErrNotFound)
}

func TestMemoryDesignFiles(t *testing.T) {
	dir := NewMemoryDesignFiles()
	dir.Register("df1", "p1")

	projectID, err := dir.ProjectForDesignFile(context.Background(), "df1")
	require.NoError(t, err)
	assert.Equal(t, "p1", projectID)

	_, err = dir.ProjectForDesignFile(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
