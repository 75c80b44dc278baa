package tracker

import (
	"context"
	"fmt"
	"time"

	"price-tracker/internal/model"
	"price-tracker/internal/sheets"
)

// Fetcher downloads and parses one sheet.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]sheets.Row, error)
}

// CatalogWriter stores the merged catalog with its expiry. Encoding is
// separate from the write so a catalog that cannot be encoded fails the
// cycle before history is committed.
type CatalogWriter interface {
	EncodeCatalog(catalog model.Catalog) ([]byte, error)
	StoreCatalog(ctx context.Context, data []byte) error
}

// Syncer runs one fetch, merge, record and cache cycle.
type Syncer struct {
	fetcher Fetcher
	history PriceWriter
	cache   CatalogWriter
	loc     *time.Location
	now     func() time.Time
}

// NewSyncer creates a syncer; "today" for history rows is taken in loc.
func NewSyncer(fetcher Fetcher, history PriceWriter, cache CatalogWriter, loc *time.Location) *Syncer {
	if loc == nil {
		loc = time.Local
	}
	return &Syncer{
		fetcher: fetcher,
		history: history,
		cache:   cache,
		loc:     loc,
		now:     time.Now,
	}
}

// Sync imports both sheets. Nothing is written unless both sheets fetch,
// parse and merge. Counts in the result are raw sheet rows.
func (s *Syncer) Sync(ctx context.Context, src model.SheetSources) (*model.SyncResult, error) {
	started := s.now()

	if !src.Configured() {
		return nil, ErrConfig
	}

	products, err := s.fetcher.Fetch(ctx, src.ProductsURL)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("products: %w", ErrEmptySheet)
	}

	stores, err := s.fetcher.Fetch(ctx, src.StoresURL)
	if err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("stores: %w", ErrEmptySheet)
	}

	catalog, err := Merge(products, stores)
	if err != nil {
		return nil, err
	}

	encoded, err := s.cache.EncodeCatalog(catalog)
	if err != nil {
		return nil, err
	}

	recorded, err := RecordHistory(ctx, s.history, catalog, started.In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to record price history: %w", err)
	}

	// History is committed at this point; only the cache transport can still fail.
	if err := s.cache.StoreCatalog(ctx, encoded); err != nil {
		return nil, err
	}

	return &model.SyncResult{
		Products:        len(products),
		Stores:          len(stores),
		CatalogSize:     len(catalog),
		HistoryRecorded: recorded,
		StartedAt:       started,
		Duration:        s.now().Sub(started),
	}, nil
}
