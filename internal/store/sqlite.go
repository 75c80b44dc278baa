package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"price-tracker/internal/model"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const (
	settingProductsURL = "products_sheet_url"
	settingStoresURL   = "stores_sheet_url"
)

// SQLiteStore keeps the price history log, sync status and settings
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	loc *time.Location
}

// NewSQLite opens (and migrates) dataDir/price-tracker.db with the given driver.
// driver is "sqlite3" (mattn/go-sqlite3) or "sqlite" (modernc.org/sqlite).
func NewSQLite(dataDir, driver string, loc *time.Location) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "price-tracker.db")

	db, err := sql.Open(driver, DSN(driver, dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	s := &SQLiteStore{db: db, loc: loc}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// DSN builds a WAL-mode connection string for the driver.
func DSN(driver, path string) string {
	if driver == "sqlite" {
		return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000", path)
}

// migrate creates tables and indexes
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id TEXT NOT NULL,
		price NUMERIC(10,2) NOT NULL,
		date_recorded TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_status (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		run_id TEXT,
		last_sync_time INTEGER,
		last_sync_status TEXT DEFAULT 'never',
		last_sync_error TEXT,
		products_synced INTEGER DEFAULT 0,
		stores_synced INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		updated_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_price_history_product_id ON price_history(product_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_price_history_product_date ON price_history(product_id, date_recorded);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordPrices upserts one row per (product, day) in a single transaction.
// A row for the same product and day is replaced, never duplicated.
func (s *SQLiteStore) RecordPrices(ctx context.Context, entries []model.PriceHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_history (product_id, price, date_recorded)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id, date_recorded) DO UPDATE SET
			price = excluded.price
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		day := e.Date.Format(model.DateLayout)
		if _, err := stmt.ExecContext(ctx, e.ProductID, e.Price.Round(2).StringFixed(2), day); err != nil {
			return fmt.Errorf("failed to record price for %s: %w", e.ProductID, err)
		}
	}

	return tx.Commit()
}

// GetPriceHistory returns the history for a product ordered by date
func (s *SQLiteStore) GetPriceHistory(ctx context.Context, productID string) ([]model.PriceHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, price, date_recorded
		FROM price_history
		WHERE product_id = ?
		ORDER BY date_recorded ASC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []model.PriceHistoryEntry{}
	for rows.Next() {
		var h model.PriceHistoryEntry
		var price decimal.Decimal
		var day string
		if err := rows.Scan(&h.ProductID, &price, &day); err != nil {
			return nil, err
		}
		d, err := time.ParseInLocation(model.DateLayout, day, s.loc)
		if err != nil {
			return nil, fmt.Errorf("bad date_recorded %q for %s: %w", day, productID, err)
		}
		h.Date = d
		h.Price = price
		history = append(history, h)
	}

	return history, rows.Err()
}

// GetSyncStatus returns the status of the latest sync run
func (s *SQLiteStore) GetSyncStatus(ctx context.Context) *model.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &model.SyncStatus{}
	var runID, syncErr sql.NullString
	var lastTime sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, last_sync_time, last_sync_status, last_sync_error,
			   products_synced, stores_synced, duration_ms
		FROM sync_status WHERE id = 1
	`).Scan(&runID, &lastTime, &status.LastSyncStatus, &syncErr,
		&status.ProductsSynced, &status.StoresSynced, &status.Duration)

	if err != nil {
		return &model.SyncStatus{LastSyncStatus: "never"}
	}

	if runID.Valid {
		status.RunID = runID.String
	}
	if lastTime.Valid {
		status.LastSyncTime = time.Unix(lastTime.Int64, 0)
	}
	if syncErr.Valid {
		status.LastSyncError = syncErr.String
	}

	return status
}

// UpdateSyncStatus replaces the stored sync status
func (s *SQLiteStore) UpdateSyncStatus(ctx context.Context, status *model.SyncStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastTime interface{}
	if !status.LastSyncTime.IsZero() {
		lastTime = status.LastSyncTime.Unix()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_status
		(id, run_id, last_sync_time, last_sync_status, last_sync_error, products_synced, stores_synced, duration_ms, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
	`, status.RunID, lastTime, status.LastSyncStatus, status.LastSyncError,
		status.ProductsSynced, status.StoresSynced, status.Duration, time.Now().Unix())

	return err
}

// GetSheetSources returns the configured sheet URLs (empty when unset)
func (s *SQLiteStore) GetSheetSources(ctx context.Context) (model.SheetSources, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var src model.SheetSources
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM config WHERE key IN (?, ?)`,
		settingProductsURL, settingStoresURL)
	if err != nil {
		return src, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return src, err
		}
		switch key {
		case settingProductsURL:
			src.ProductsURL = value.String
		case settingStoresURL:
			src.StoresURL = value.String
		}
	}

	return src, rows.Err()
}

// SetSheetSources stores both sheet URLs
func (s *SQLiteStore) SetSheetSources(ctx context.Context, src model.SheetSources) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		settingProductsURL: src.ProductsURL,
		settingStoresURL:   src.StoresURL,
	} {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// SeedSheetSources fills in any sheet URL that has not been set yet.
func (s *SQLiteStore) SeedSheetSources(ctx context.Context, defaults model.SheetSources) error {
	current, err := s.GetSheetSources(ctx)
	if err != nil {
		return err
	}
	if current.ProductsURL == "" {
		current.ProductsURL = defaults.ProductsURL
	}
	if current.StoresURL == "" {
		current.StoresURL = defaults.StoresURL
	}
	return s.SetSheetSources(ctx, current)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
