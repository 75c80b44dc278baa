package tracker

import (
	"fmt"

	"price-tracker/internal/model"
	"price-tracker/internal/sheets"
)

// Sheet column names.
const (
	ColProductID    = "ProductID"
	ColTitle        = "Title"
	ColPrimaryStore = "PrimaryStoreForGraph"
	ColStoreName    = "StoreName"
	ColProductURL   = "ProductURL"
	ColCurrentPrice = "CurrentPrice"
)

// Merge joins the Products and Stores sheets on ProductID.
// Products with an empty ID are skipped and a repeated ID replaces the earlier
// row. Store rows keep their sheet order; rows for unknown products are dropped.
func Merge(products, stores []sheets.Row) (model.Catalog, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("products: %w", ErrEmptySheet)
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("stores: %w", ErrEmptySheet)
	}

	catalog := make(model.Catalog, len(products))
	for _, p := range products {
		id := p[ColProductID]
		if id == "" {
			continue
		}
		catalog[id] = &model.ProductRecord{
			ID:           id,
			Title:        p[ColTitle],
			PrimaryStore: p[ColPrimaryStore],
			Offers:       []model.StoreOffer{},
		}
	}

	for _, s := range stores {
		rec, ok := catalog[s[ColProductID]]
		if !ok {
			continue
		}
		rec.Offers = append(rec.Offers, model.StoreOffer{
			StoreName:  s[ColStoreName],
			ProductURL: s[ColProductURL],
			PriceText:  s[ColCurrentPrice],
		})
	}

	return catalog, nil
}
