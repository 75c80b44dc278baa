package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"price-tracker/internal/cache"
	"price-tracker/internal/model"
	"price-tracker/internal/sheets"
	"price-tracker/internal/store"
)

type fakeFetcher struct {
	rows map[string][]sheets.Row
	errs map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]sheets.Row, error) {
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return f.rows[url], nil
}

type fakeCatalogCache struct {
	catalog   model.Catalog
	writes    int
	encodeErr error
}

func (c *fakeCatalogCache) EncodeCatalog(catalog model.Catalog) ([]byte, error) {
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	return json.Marshal(catalog)
}

func (c *fakeCatalogCache) StoreCatalog(_ context.Context, data []byte) error {
	c.writes++
	c.catalog = nil
	return json.Unmarshal(data, &c.catalog)
}

var testSources = model.SheetSources{ProductsURL: "http://sheets/products", StoresURL: "http://sheets/stores"}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		rows: map[string][]sheets.Row{
			testSources.ProductsURL: {
				{"ProductID": "p1", "Title": "Phone", "PrimaryStoreForGraph": "StoreA"},
				{"ProductID": "p1", "Title": "Phone", "PrimaryStoreForGraph": "StoreA"},
			},
			testSources.StoresURL: {
				{"ProductID": "p1", "StoreName": "StoreA", "CurrentPrice": "Rs. 1,200", "ProductURL": "http://a"},
				{"ProductID": "p1", "StoreName": "StoreB", "CurrentPrice": "Rs. 1,150", "ProductURL": "http://b"},
				{"ProductID": "p7", "StoreName": "StoreB", "CurrentPrice": "5", "ProductURL": "http://b/7"},
			},
		},
		errs: map[string]error{},
	}
}

func TestSyncCountsRawRows(t *testing.T) {
	h := newMemoryHistory()
	c := &fakeCatalogCache{}
	s := NewSyncer(newFakeFetcher(), h, c, time.UTC)

	result, err := s.Sync(context.Background(), testSources)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.Products != 2 || result.Stores != 3 || result.CatalogSize != 1 || result.HistoryRecorded != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if c.writes != 1 || len(c.catalog["p1"].Offers) != 2 {
		t.Fatalf("catalog not cached: %+v", c.catalog)
	}
}

func TestSyncFailuresWriteNothing(t *testing.T) {
	notFound := &sheets.FetchError{URL: testSources.StoresURL, StatusCode: http.StatusNotFound}

	cases := []struct {
		name    string
		src     model.SheetSources
		mutate  func(f *fakeFetcher)
		wantErr error
	}{
		{
			name:    "missing stores url",
			src:     model.SheetSources{ProductsURL: testSources.ProductsURL},
			wantErr: ErrConfig,
		},
		{
			name:    "empty products",
			src:     testSources,
			mutate:  func(f *fakeFetcher) { f.rows[testSources.ProductsURL] = []sheets.Row{} },
			wantErr: ErrEmptySheet,
		},
		{
			name:    "empty stores",
			src:     testSources,
			mutate:  func(f *fakeFetcher) { delete(f.rows, testSources.StoresURL) },
			wantErr: ErrEmptySheet,
		},
		{
			name:    "stores 404",
			src:     testSources,
			mutate:  func(f *fakeFetcher) { f.errs[testSources.StoresURL] = notFound },
			wantErr: notFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeFetcher()
			if tc.mutate != nil {
				tc.mutate(f)
			}
			h := newMemoryHistory()
			c := &fakeCatalogCache{}

			_, err := NewSyncer(f, h, c, time.UTC).Sync(context.Background(), tc.src)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if h.calls != 0 || c.writes != 0 {
				t.Fatalf("failed sync wrote state: history calls=%d cache writes=%d", h.calls, c.writes)
			}
		})
	}
}

func TestSyncHistoryFailureSkipsCache(t *testing.T) {
	h := newMemoryHistory()
	h.err = errors.New("disk full")
	c := &fakeCatalogCache{}

	if _, err := NewSyncer(newFakeFetcher(), h, c, time.UTC).Sync(context.Background(), testSources); err == nil {
		t.Fatal("expected error")
	}
	if c.writes != 0 {
		t.Fatal("cache must not be refreshed when history fails")
	}
}

func TestSyncEncodeFailureSkipsHistory(t *testing.T) {
	h := newMemoryHistory()
	c := &fakeCatalogCache{encodeErr: errors.New("unsupported value")}

	if _, err := NewSyncer(newFakeFetcher(), h, c, time.UTC).Sync(context.Background(), testSources); err == nil {
		t.Fatal("expected error")
	}
	if h.calls != 0 || c.writes != 0 {
		t.Fatalf("failed encode wrote state: history calls=%d cache writes=%d", h.calls, c.writes)
	}
}

func TestSyncEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\xEF\xBB\xBFProductID,Title,PrimaryStoreForGraph\np1,Phone,StoreA\n"))
	})
	mux.HandleFunc("/stores.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ProductID,StoreName,CurrentPrice,ProductURL\np1,StoreA,\"Rs. 1,200\",http://a\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	db, err := store.NewSQLite(t.TempDir(), "sqlite", time.UTC)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer db.Close()
	cc := cache.NewCatalogCache(cache.NewMemory(time.Minute), 12*time.Hour)

	s := NewSyncer(sheets.NewClient("test", 5*time.Second), db, cc, time.UTC)
	s.now = func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }
	src := model.SheetSources{ProductsURL: srv.URL + "/products.csv", StoresURL: srv.URL + "/stores.csv"}

	for i := 0; i < 2; i++ {
		if _, err := s.Sync(ctx, src); err != nil {
			t.Fatalf("Sync #%d: %v", i+1, err)
		}
	}

	rec, ok := cc.Product(ctx, "p1")
	if !ok {
		t.Fatal("expected p1 in cache")
	}
	if rec.PrimaryStore != "StoreA" || len(rec.Offers) != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if price, ok := rec.Offers[0].Price(); !ok || price.String() != "1200" {
		t.Fatalf("expected offer price 1200, got %s", price)
	}

	history, err := db.GetPriceHistory(ctx, "p1")
	if err != nil {
		t.Fatalf("GetPriceHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one row after two same-day syncs, got %d", len(history))
	}
	if history[0].Date.Format(model.DateLayout) != "2024-05-10" || history[0].Price.StringFixed(2) != "1200.00" {
		t.Fatalf("unexpected history row %+v", history[0])
	}
}

func TestSyncFetchErrorKeepsPriorState(t *testing.T) {
	var fail atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/products.csv", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ProductID,Title,PrimaryStoreForGraph\np1,Phone,StoreA\n"))
	})
	mux.HandleFunc("/stores.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ProductID,StoreName,CurrentPrice,ProductURL\np1,StoreA,100,http://a\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	db, err := store.NewSQLite(t.TempDir(), "sqlite", time.UTC)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer db.Close()
	cc := cache.NewCatalogCache(cache.NewMemory(time.Minute), 12*time.Hour)
	s := NewSyncer(sheets.NewClient("test", 5*time.Second), db, cc, time.UTC)
	src := model.SheetSources{ProductsURL: srv.URL + "/products.csv", StoresURL: srv.URL + "/stores.csv"}

	if _, err := s.Sync(ctx, src); err != nil {
		t.Fatalf("first Sync: %v", err)
	}

	fail.Store(true)
	_, err = s.Sync(ctx, src)
	var fe *sheets.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 FetchError, got %v", err)
	}

	if _, ok := cc.Product(ctx, "p1"); !ok {
		t.Fatal("prior cache must survive a failed sync")
	}
	if history, _ := db.GetPriceHistory(ctx, "p1"); len(history) != 1 {
		t.Fatalf("prior history must survive a failed sync, got %d rows", len(history))
	}
}
