package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/amirphl/referral-hub/models"
	"github.com/redis/go-redis/v9"
)

// CachedCatalogReader keeps a JSON snapshot of another reader's catalog in Redis.
// A nil client turns it into a pass-through.
type CachedCatalogReader struct {
	inner CatalogReader
	rc    *redis.Client
	key   string
	ttl   time.Duration
}

// NewCachedCatalogReader wraps inner with a Redis snapshot stored under key
func NewCachedCatalogReader(inner CatalogReader, rc *redis.Client, key string, ttl time.Duration) *CachedCatalogReader {
	return &CachedCatalogReader{inner: inner, rc: rc, key: key, ttl: ttl}
}

// Load returns the cached snapshot when present, otherwise loads from the inner reader and caches the result
func (r *CachedCatalogReader) Load(ctx context.Context) (*models.Catalog, error) {
	if r.rc == nil {
		return r.inner.Load(ctx)
	}

	bs, err := r.rc.Get(ctx, r.key).Bytes()
	switch {
	case err == nil && len(bs) > 0:
		var catalog models.Catalog
		if err := json.Unmarshal(bs, &catalog); err == nil {
			return &catalog, nil
		}
		log.Printf(`{"level":"warn","event":"catalog_cache_corrupt","key":"%s"}`, r.key)
	case err != nil && !errors.Is(err, redis.Nil):
		log.Printf(`{"level":"warn","event":"catalog_cache_read_failed","key":"%s","error":"%v"}`, r.key, err)
	}

	catalog, err := r.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	if bs, err := json.Marshal(catalog); err == nil {
		if err := r.rc.Set(ctx, r.key, bs, r.ttl).Err(); err != nil {
			log.Printf(`{"level":"warn","event":"catalog_cache_write_failed","key":"%s","error":"%v"}`, r.key, err)
		}
	}

	return catalog, nil
}

// Invalidate drops the snapshot so the next Load reads through
func (r *CachedCatalogReader) Invalidate(ctx context.Context) error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Del(ctx, r.key).Err()
}
