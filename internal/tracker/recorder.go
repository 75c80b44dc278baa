package tracker

import (
	"context"
	"sort"
	"strings"
	"time"

	"price-tracker/internal/model"

	"github.com/shopspring/decimal"
)

// PriceWriter persists history entries with replace-per-day semantics.
type PriceWriter interface {
	RecordPrices(ctx context.Context, entries []model.PriceHistoryEntry) error
}

// PrimaryPrice returns the normalized price of the first primary-store offer
// with a non-empty price; a bare "0" counts as empty. A price that does not
// normalize, or normalizes to zero, is reported missing.
func PrimaryPrice(rec *model.ProductRecord) (decimal.Decimal, bool) {
	for _, o := range rec.Offers {
		text := strings.TrimSpace(o.PriceText)
		if o.StoreName != rec.PrimaryStore || text == "" || text == "0" {
			continue
		}
		price, ok := o.Price()
		if !ok || price.IsZero() {
			return decimal.Zero, false
		}
		return price, true
	}
	return decimal.Zero, false
}

// HistoryEntries builds today's entries for every product with a primary price.
func HistoryEntries(catalog model.Catalog, today time.Time) []model.PriceHistoryEntry {
	day := model.Day(today)

	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]model.PriceHistoryEntry, 0, len(ids))
	for _, id := range ids {
		price, ok := PrimaryPrice(catalog[id])
		if !ok {
			continue
		}
		entries = append(entries, model.PriceHistoryEntry{ProductID: id, Date: day, Price: price})
	}
	return entries
}

// RecordHistory writes today's primary prices and returns how many were written.
func RecordHistory(ctx context.Context, w PriceWriter, catalog model.Catalog, today time.Time) (int, error) {
	entries := HistoryEntries(catalog, today)
	if err := w.RecordPrices(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
