package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for history rows and chart labels.
const DateLayout = "2006-01-02"

// ProductRecord is one merged product from the Products sheet with its offers
// from the Stores sheet.
type ProductRecord struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	PrimaryStore string       `json:"primary_store"`
	Offers       []StoreOffer `json:"stores"`
}

// StoreOffer is a single store's listing for a product.
type StoreOffer struct {
	StoreName  string `json:"store_name"`
	ProductURL string `json:"product_url"`
	PriceText  string `json:"current_price"` // free text as published, e.g. "Rs. 1,200"
}

// Price returns the normalized offer price.
func (o StoreOffer) Price() (decimal.Decimal, bool) {
	return ParsePrice(o.PriceText)
}

// PrimaryOffer returns the first offer sold by the record's primary store.
func (r *ProductRecord) PrimaryOffer() (StoreOffer, bool) {
	for _, o := range r.Offers {
		if o.StoreName == r.PrimaryStore {
			return o, true
		}
	}
	return StoreOffer{}, false
}

// Catalog maps product ID to its merged record.
type Catalog map[string]*ProductRecord

// PriceHistoryEntry is one recorded (product, day, price) observation.
type PriceHistoryEntry struct {
	ProductID string          `json:"product_id"`
	Date      time.Time       `json:"date_recorded"`
	Price     decimal.Decimal `json:"price"`
}

// Day truncates t to the calendar day in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SheetSources holds the published CSV export URLs.
type SheetSources struct {
	ProductsURL string `json:"products_sheet_url"`
	StoresURL   string `json:"stores_sheet_url"`
}

// Configured reports whether both URLs are set.
func (s SheetSources) Configured() bool {
	return s.ProductsURL != "" && s.StoresURL != ""
}

// SyncResult summarizes one successful sync cycle.
type SyncResult struct {
	RunID           string        `json:"run_id"`
	Products        int           `json:"products"` // raw product rows, not deduplicated
	Stores          int           `json:"stores"`
	CatalogSize     int           `json:"catalog_size"`
	HistoryRecorded int           `json:"history_recorded"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
}

// SyncStatus is the persisted outcome of the latest sync run.
type SyncStatus struct {
	RunID          string    `json:"run_id,omitempty"`
	LastSyncTime   time.Time `json:"last_sync_time"`
	LastSyncStatus string    `json:"last_sync_status"` // never, running, success, failed
	LastSyncError  string    `json:"last_sync_error,omitempty"`
	ProductsSynced int       `json:"products_synced"`
	StoresSynced   int       `json:"stores_synced"`
	Duration       int64     `json:"duration_ms"`
}

// Notice is the short-lived message shown to an admin after a sync.
type Notice struct {
	Type    string `json:"type"` // success, error
	Message string `json:"message"`
}
