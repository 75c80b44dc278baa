package render

import (
	"price-tracker/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Stats summarizes a product's recorded prices.
type Stats struct {
	Highest decimal.Decimal `json:"highest"`
	Lowest  decimal.Decimal `json:"lowest"`
	Average decimal.Decimal `json:"average"`
	Current decimal.Decimal `json:"current"`
}

// ComputeStats expects history ordered by date. All values are zero for an
// empty history; Average is rounded to a whole number and Current is the
// most recent entry.
func ComputeStats(history []model.PriceHistoryEntry) Stats {
	if len(history) == 0 {
		return Stats{Highest: decimal.Zero, Lowest: decimal.Zero, Average: decimal.Zero, Current: decimal.Zero}
	}

	highest, lowest, sum := history[0].Price, history[0].Price, decimal.Zero
	for _, h := range history {
		if h.Price.GreaterThan(highest) {
			highest = h.Price
		}
		if h.Price.LessThan(lowest) {
			lowest = h.Price
		}
		sum = sum.Add(h.Price)
	}

	return Stats{
		Highest: highest,
		Lowest:  lowest,
		Average: sum.Div(decimal.NewFromInt(int64(len(history)))).Round(0),
		Current: history[len(history)-1].Price,
	}
}

// MeterPosition places Current between Lowest (0) and Highest (100).
// A flat or empty range sits in the middle.
func MeterPosition(s Stats) float64 {
	if !s.Highest.GreaterThan(s.Lowest) {
		return 50
	}
	pos := s.Current.Sub(s.Lowest).Div(s.Highest.Sub(s.Lowest)).Mul(hundred).InexactFloat64()
	if pos < 0 {
		return 0
	}
	if pos > 100 {
		return 100
	}
	return pos
}
