package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"price-tracker/internal/model"
)

const (
	catalogKey = "price_tracker_data"
	noticeKey  = "sync_notice"

	// NoticeTTL is how long a sync notice waits to be read.
	NoticeTTL = 30 * time.Second
)

// CatalogCache stores the merged catalog and the latest sync notice.
type CatalogCache struct {
	c   Cache
	ttl time.Duration
}

func NewCatalogCache(c Cache, ttl time.Duration) *CatalogCache {
	return &CatalogCache{c: c, ttl: ttl}
}

// SetCatalog replaces the cached catalog and restarts its TTL.
func (cc *CatalogCache) SetCatalog(ctx context.Context, catalog model.Catalog) error {
	data, err := cc.EncodeCatalog(catalog)
	if err != nil {
		return err
	}
	return cc.StoreCatalog(ctx, data)
}

// EncodeCatalog serializes a catalog for StoreCatalog.
func (cc *CatalogCache) EncodeCatalog(catalog model.Catalog) ([]byte, error) {
	data, err := json.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	return data, nil
}

// StoreCatalog writes an encoded catalog with the cache TTL.
func (cc *CatalogCache) StoreCatalog(ctx context.Context, data []byte) error {
	if err := cc.c.Set(ctx, catalogKey, data, cc.ttl); err != nil {
		return fmt.Errorf("failed to cache catalog: %w", err)
	}
	return nil
}

// Catalog returns the cached catalog, or false on a miss.
func (cc *CatalogCache) Catalog(ctx context.Context) (model.Catalog, bool, error) {
	data, ok, err := cc.c.Get(ctx, catalogKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var catalog model.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return catalog, true, nil
}

// Product returns one cached product record.
func (cc *CatalogCache) Product(ctx context.Context, id string) (*model.ProductRecord, bool) {
	catalog, ok, err := cc.Catalog(ctx)
	if err != nil || !ok {
		return nil, false
	}
	p, ok := catalog[id]
	return p, ok
}

// SetNotice stores the latest sync notice for NoticeTTL.
func (cc *CatalogCache) SetNotice(ctx context.Context, n model.Notice) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return cc.c.Set(ctx, noticeKey, data, NoticeTTL)
}

// PopNotice returns the pending notice and removes it.
func (cc *CatalogCache) PopNotice(ctx context.Context) (*model.Notice, bool, error) {
	data, ok, err := cc.c.Get(ctx, noticeKey)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := cc.c.Delete(ctx, noticeKey); err != nil {
		return nil, false, err
	}
	var n model.Notice
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, false, err
	}
	return &n, true, nil
}
