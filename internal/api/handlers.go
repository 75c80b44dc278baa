package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"price-tracker/internal/model"
	"price-tracker/internal/render"
	"price-tracker/internal/sheets"
	"price-tracker/internal/tracker"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CatalogReader reads the cached catalog and pending sync notice
type CatalogReader interface {
	Catalog(ctx context.Context) (model.Catalog, bool, error)
	Product(ctx context.Context, id string) (*model.ProductRecord, bool)
	PopNotice(ctx context.Context) (*model.Notice, bool, error)
}

// HistoryReader reads the price log
type HistoryReader interface {
	GetPriceHistory(ctx context.Context, productID string) ([]model.PriceHistoryEntry, error)
}

// SettingsStore reads and writes the sheet URLs
type SettingsStore interface {
	GetSheetSources(ctx context.Context) (model.SheetSources, error)
	SetSheetSources(ctx context.Context, src model.SheetSources) error
}

// SchedulerInterface defines the scheduler interface for handlers
type SchedulerInterface interface {
	SyncNow(ctx context.Context) (*model.SyncResult, error)
	Status(ctx context.Context) *tracker.SchedulerStatus
}

// Handlers contains all API handlers
type Handlers struct {
	catalog     CatalogReader
	history     HistoryReader
	settings    SettingsStore
	scheduler   SchedulerInterface
	syncLimiter *rate.Limiter
}

// NewHandlers creates a new handlers instance. Manual syncs are allowed once
// per syncEvery.
func NewHandlers(catalog CatalogReader, history HistoryReader, settings SettingsStore, scheduler SchedulerInterface, syncEvery time.Duration) *Handlers {
	return &Handlers{
		catalog:     catalog,
		history:     history,
		settings:    settings,
		scheduler:   scheduler,
		syncLimiter: rate.NewLimiter(rate.Every(syncEvery), 1),
	}
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

type productSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PrimaryStore string `json:"primary_store"`
	Offers       int    `json:"offers"`
}

// GetProducts lists the cached catalog
func (h *Handlers) GetProducts(c *gin.Context) {
	catalog := h.cachedCatalog(c)

	products := make([]productSummary, 0, len(catalog))
	for _, p := range catalog {
		products = append(products, productSummary{
			ID:           p.ID,
			Title:        p.Title,
			PrimaryStore: p.PrimaryStore,
			Offers:       len(p.Offers),
		})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// GetProduct returns a single cached product by ID
func (h *Handlers) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, ok := h.catalog.Product(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProductHistory returns price history for a product
func (h *Handlers) GetProductHistory(c *gin.Context) {
	id := c.Param("id")

	history, err := h.history.GetPriceHistory(c.Request.Context(), id)
	if err != nil {
		log.Printf("[API] failed to load history for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price history"})
		return
	}

	// Parse limit parameter (capped at maxLimit)
	const maxLimit = 1000
	limit := 365
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = min(l, maxLimit)
		}
	}

	// Keep the most recent entries
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": id,
		"count":      len(history),
		"history":    history,
	})
}

// GetWidget returns the widget payload; 204 when there is nothing to show
func (h *Handlers) GetWidget(c *gin.Context) {
	w, ok := h.renderWidget(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, w)
}

// GetWidgetHTML returns the widget HTML fragment; 204 when there is nothing to show
func (h *Handlers) GetWidgetHTML(c *gin.Context) {
	w, ok := h.renderWidget(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(w.HTML))
}

func (h *Handlers) renderWidget(c *gin.Context) (*render.Widget, bool) {
	id := c.Param("id")
	catalog := h.cachedCatalog(c)
	if _, ok := catalog[id]; !ok {
		return nil, false
	}

	history, err := h.history.GetPriceHistory(c.Request.Context(), id)
	if err != nil {
		log.Printf("[API] failed to load history for %s: %v", id, err)
		history = nil
	}

	return render.Render(id, catalog, history)
}

// cachedCatalog returns the cached catalog; a miss or read error yields an empty one.
func (h *Handlers) cachedCatalog(c *gin.Context) model.Catalog {
	catalog, ok, err := h.catalog.Catalog(c.Request.Context())
	if err != nil {
		log.Printf("[API] failed to read catalog cache: %v", err)
	}
	if !ok {
		return model.Catalog{}
	}
	return catalog
}

// TriggerSync runs a sync immediately
func (h *Handlers) TriggerSync(c *gin.Context) {
	if !h.syncLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "a sync was triggered recently, try again later"})
		return
	}

	result, err := h.scheduler.SyncNow(c.Request.Context())
	if err != nil {
		c.JSON(syncErrorStatus(err), gin.H{"error": "Data sync failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Data synced and cached successfully",
		"result":  result,
	})
}

func syncErrorStatus(err error) int {
	var fetchErr *sheets.FetchError
	var parseErr *sheets.ParseError
	switch {
	case errors.Is(err, tracker.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrEmptySheet):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetSyncStatus returns the scheduler status
func (h *Handlers) GetSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status(c.Request.Context()))
}

// GetNotice returns the pending sync notice once
func (h *Handlers) GetNotice(c *gin.Context) {
	notice, ok, err := h.catalog.PopNotice(c.Request.Context())
	if err != nil {
		log.Printf("[API] failed to read sync notice: %v", err)
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, notice)
}

// GetSettings returns the sheet URLs
func (h *Handlers) GetSettings(c *gin.Context) {
	src, err := h.settings.GetSheetSources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, src)
}

// UpdateSettings validates and saves the sheet URLs
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req model.SheetSources
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.ProductsURL = strings.TrimSpace(req.ProductsURL)
	req.StoresURL = strings.TrimSpace(req.StoresURL)
	for name, raw := range map[string]string{"products_sheet_url": req.ProductsURL, "stores_sheet_url": req.StoresURL} {
		if raw != "" && !validSheetURL(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an absolute http(s) URL"})
			return
		}
	}

	if err := h.settings.SetSheetSources(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, req)
}

func validSheetURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
