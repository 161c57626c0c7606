package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"celluiq/models"
	"celluiq/storage"
)

const catalogCacheKey = "catalog:references"

// ReferenceSource ist die persistente Quelle des Katalogs.
type ReferenceSource interface {
	List(ctx context.Context) ([]models.ReferenceEntry, error)
}

// JSONCache ist ein Key-Value-Cache für JSON-Werte.
type JSONCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CatalogService liefert den Referenzkatalog aus Redis oder, bei einem Cache-Miss, aus der
// Datenbank. Parallele Ladevorgänge werden zusammengefasst.
type CatalogService struct {
	Source ReferenceSource
	Cache  JSONCache
	TTL    time.Duration
	Logger *zap.Logger

	group singleflight.Group
}

func NewCatalogService(source ReferenceSource, cache JSONCache, ttl time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{Source: source, Cache: cache, TTL: ttl, Logger: logger}
}

// References gibt den Katalog zurück.
func (c *CatalogService) References(ctx context.Context) ([]models.ReferenceEntry, error) {
	if c.Cache != nil {
		var entries []models.ReferenceEntry
		err := c.Cache.Get(ctx, catalogCacheKey, &entries)
		if err == nil {
			return entries, nil
		}
		if !errors.Is(err, storage.ErrCacheMiss) {
			c.Logger.Warn("Katalog-Cache nicht lesbar, lade aus der Datenbank", zap.Error(err))
		}
	}

	v, err, _ := c.group.Do(catalogCacheKey, func() (interface{}, error) {
		return c.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ReferenceEntry), nil
}

// Refresh lädt den Katalog neu und schreibt ihn in den Cache.
func (c *CatalogService) Refresh(ctx context.Context) (int, error) {
	entries, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Invalidate entfernt den Katalog aus dem Cache.
func (c *CatalogService) Invalidate(ctx context.Context) error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Delete(ctx, catalogCacheKey)
}

func (c *CatalogService) load(ctx context.Context) ([]models.ReferenceEntry, error) {
	entries, err := c.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference catalog: %w", err)
	}
	if c.Cache != nil {
		if err := c.Cache.Set(ctx, catalogCacheKey, entries, c.TTL); err != nil {
			c.Logger.Warn("Katalog konnte nicht gecacht werden", zap.Error(err))
		}
	}
	return entries, nil
}
