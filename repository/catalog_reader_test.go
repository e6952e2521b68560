package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirphl/referral-hub/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	catalog *models.Catalog
	err     error
	calls   int
}

func (r *countingReader) Load(ctx context.Context) (*models.Catalog, error) {
	r.calls++
	return r.catalog, r.err
}

func TestFileCatalogReader_EmbeddedDataset(t *testing.T) {
	reader := NewFileCatalogReader("")

	ds, err := reader.LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Tags, 11)
	assert.Len(t, ds.Users, 3)
	assert.Len(t, ds.Referrals, 3)
	assert.Len(t, ds.ReferralRequests, 3)

	catalog, err := reader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Referrals, 3)

	first := catalog.Referrals[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "San Francisco, CA", first.Location)
	assert.Equal(t, models.WorkType("Remote"), first.WorkType)
	assert.Equal(t, []string{"1", "2", "3", "4"}, []string(first.TagIDs))
	assert.True(t, first.IsActive())
	assert.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), first.CreatedAt.UTC())
}

func TestFileCatalogReader_CustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
tags:
  - {id: "t1", name: Go}
users:
  - {id: "u1", name: Ada, email: ada@example.com}
referrals:
  - id: r1
    title: Platform Engineer
    description: Build the platform
    location: Berlin
    work_type: remote
    author_id: u1
    tags: [t1]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	catalog, err := NewFileCatalogReader(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog.Referrals, 1)
	assert.Equal(t, "Berlin", catalog.Referrals[0].Location)
	assert.Equal(t, "Ada", catalog.Users[0].Name)
}

func TestFileCatalogReader_Errors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := NewFileCatalogReader(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read dataset")
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := DecodeDataset([]byte("referals: []\n"), "inline")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode dataset inline")
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileCatalogReader("").Load(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCachedCatalogReader_NilClientPassesThrough(t *testing.T) {
	inner := &countingReader{catalog: &models.Catalog{Tags: []models.Tag{{ID: "1", Name: "Go"}}}}
	reader := NewCachedCatalogReader(inner, nil, "catalog:snapshot", time.Minute)

	for range 2 {
		catalog, err := reader.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Go", catalog.Tags[0].Name)
	}
	assert.Equal(t, 2, inner.calls)
	assert.NoError(t, reader.Invalidate(context.Background()))
}

func TestCachedCatalogReader_RedisDownFallsBackToInner(t *testing.T) {
	rc := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rc.Close()

	inner := &countingReader{catalog: &models.Catalog{Users: []models.User{{ID: "101", Name: "Alex"}}}}
	reader := NewCachedCatalogReader(inner, rc, "catalog:snapshot", time.Minute)

	catalog, err := reader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alex", catalog.Users[0].Name)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedCatalogReader_InnerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	reader := NewCachedCatalogReader(&countingReader{err: boom}, nil, "k", time.Minute)

	_, err := reader.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}
