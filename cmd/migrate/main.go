// Command to import a legacy price history export into the SQLite store
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"price-tracker/internal/model"
	"price-tracker/internal/sheets"
	"price-tracker/internal/store"
)

const version = "1.0.0"

func main() {
	dataDir := flag.String("dir", "./data", "Data directory holding price-tracker.db")
	file := flag.String("file", "", "CSV export of the old history table (id,product_id,price,date_recorded)")
	driver := flag.String("driver", "sqlite3", "SQLite driver: sqlite3 or sqlite")
	tz := flag.String("tz", "Local", "Time zone of date_recorded values")
	dryRun := flag.Bool("dry-run", false, "Show what would be done without making changes")
	versionFlag := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("migrate version %s\n", version)
		return
	}

	fmt.Printf("=== Price history import v%s ===\n\n", version)

	if *file == "" {
		fmt.Println("error: -file is required")
		os.Exit(1)
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Printf("error: invalid time zone %q: %v\n", *tz, err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Println("=== dry run (no data will be changed) ===")
	}

	// Step 1: Read the export
	fmt.Printf("reading %s...\n", *file)
	body, err := os.ReadFile(*file)
	if err != nil {
		fmt.Printf("error: cannot read export: %v\n", err)
		os.Exit(1)
	}

	entries, skipped, err := loadLegacyHistory(body, loc)
	if err != nil {
		fmt.Printf("error: cannot parse export: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("found %d (product, day) entries, skipped %d rows\n", len(entries), skipped)

	if *dryRun {
		for _, e := range entries {
			fmt.Printf("  %s %s %s\n", e.ProductID, e.Date.Format(model.DateLayout), e.Price.StringFixed(2))
		}
		return
	}

	// Step 2: Write through the store so the same-day uniqueness rule applies
	db, err := store.NewSQLite(*dataDir, *driver, loc)
	if err != nil {
		fmt.Printf("error: cannot open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RecordPrices(context.Background(), entries); err != nil {
		fmt.Printf("error: import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nimport complete: %d entries\n", len(entries))
}

type legacyRow struct {
	id    int64
	entry model.PriceHistoryEntry
}

// loadLegacyHistory parses the old table export. The old table allowed more
// than one row per product and day; the row with the highest id wins.
func loadLegacyHistory(body []byte, loc *time.Location) ([]model.PriceHistoryEntry, int, error) {
	rows, err := sheets.Parse(body)
	if err != nil {
		return nil, 0, err
	}

	latest := make(map[string]legacyRow)
	skipped := 0
	for i, r := range rows {
		productID := r["product_id"]
		price, okPrice := model.ParsePrice(r["price"])
		day, errDay := time.ParseInLocation(model.DateLayout, r["date_recorded"], loc)
		if productID == "" || !okPrice || errDay != nil {
			skipped++
			continue
		}

		id, err := strconv.ParseInt(r["id"], 10, 64)
		if err != nil {
			// Without an id, file order decides.
			id = int64(i)
		}

		key := productID + "|" + r["date_recorded"]
		if prev, ok := latest[key]; ok && prev.id > id {
			continue
		}
		latest[key] = legacyRow{
			id:    id,
			entry: model.PriceHistoryEntry{ProductID: productID, Date: day, Price: price},
		}
	}

	entries := make([]model.PriceHistoryEntry, 0, len(latest))
	for _, row := range latest {
		entries = append(entries, row.entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ProductID != entries[j].ProductID {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].Date.Before(entries[j].Date)
	})

	return entries, skipped, nil
}
