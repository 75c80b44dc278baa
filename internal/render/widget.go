package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"

	"price-tracker/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const placeholderURL = "#"

//go:embed templates/widget.html
var templateFS embed.FS

var widgetTmpl = template.Must(template.New("widget.html").Funcs(template.FuncMap{
	"npr": FormatNPR,
	"pct": func(f float64) string { return fmt.Sprintf("%.2f", f) },
}).ParseFS(templateFS, "templates/widget.html"))

// Widget is the price comparison payload for one product.
type Widget struct {
	ProductID       string        `json:"product_id"`
	Title           string        `json:"title"`
	PrimaryStore    string        `json:"primary_store"`
	PrimaryStoreURL string        `json:"primary_store_url"`
	Stats           Stats         `json:"stats"`
	MeterPosition   float64       `json:"meter_position"`
	Offers          []OfferView   `json:"offers"`
	History         []Point       `json:"history"`
	HTML            template.HTML `json:"html"`
}

// OfferView is an offer with its normalized price.
type OfferView struct {
	StoreName  string          `json:"store_name"`
	ProductURL string          `json:"product_url"`
	Price      decimal.Decimal `json:"price"`
	HasPrice   bool            `json:"has_price"`
	Primary    bool            `json:"primary"`
}

// Point is one chart sample.
type Point struct {
	Date  string          `json:"date_recorded"`
	Price decimal.Decimal `json:"price"`
}

// Render builds the widget for productID. It reports false when the catalog
// has no such product, in which case nothing should be shown.
func Render(productID string, catalog model.Catalog, history []model.PriceHistoryEntry) (*Widget, bool) {
	rec, ok := catalog[productID]
	if !ok || rec == nil {
		return nil, false
	}

	stats := ComputeStats(history)
	w := &Widget{
		ProductID:       rec.ID,
		Title:           rec.Title,
		PrimaryStore:    rec.PrimaryStore,
		PrimaryStoreURL: placeholderURL,
		Stats:           stats,
		MeterPosition:   MeterPosition(stats),
		Offers:          make([]OfferView, 0, len(rec.Offers)),
		History:         make([]Point, 0, len(history)),
	}

	if o, ok := rec.PrimaryOffer(); ok {
		w.PrimaryStoreURL = o.ProductURL
	}

	for _, o := range rec.Offers {
		price, ok := o.Price()
		w.Offers = append(w.Offers, OfferView{
			StoreName:  o.StoreName,
			ProductURL: o.ProductURL,
			Price:      price,
			HasPrice:   ok,
			Primary:    o.StoreName == rec.PrimaryStore,
		})
	}

	for _, h := range history {
		w.History = append(w.History, Point{Date: h.Date.Format(model.DateLayout), Price: h.Price})
	}

	var buf bytes.Buffer
	if err := widgetTmpl.Execute(&buf, w); err != nil {
		log.Printf("[Render] failed to render widget for %s: %v", productID, err)
		return nil, false
	}
	w.HTML = template.HTML(buf.String())

	return w, true
}

// FormatNPR prints a price rounded to whole rupees with thousands separators.
func FormatNPR(d decimal.Decimal) string {
	return "NPR " + humanize.Comma(d.Round(0).IntPart())
}
