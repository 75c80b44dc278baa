package store

import (
	"context"

	"price-tracker/internal/model"
)

// HistoryStore is the persistent price log.
type HistoryStore interface {
	RecordPrices(ctx context.Context, entries []model.PriceHistoryEntry) error
	GetPriceHistory(ctx context.Context, productID string) ([]model.PriceHistoryEntry, error)
}

// StatusStore persists the latest sync outcome.
type StatusStore interface {
	GetSyncStatus(ctx context.Context) *model.SyncStatus
	UpdateSyncStatus(ctx context.Context, status *model.SyncStatus) error
}

// SettingsStore exposes the sheet URLs.
type SettingsStore interface {
	GetSheetSources(ctx context.Context) (model.SheetSources, error)
	SetSheetSources(ctx context.Context, src model.SheetSources) error
}

var (
	_ HistoryStore  = (*SQLiteStore)(nil)
	_ StatusStore   = (*SQLiteStore)(nil)
	_ SettingsStore = (*SQLiteStore)(nil)
)
