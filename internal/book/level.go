package book

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Level is one stored price level. Value data only: the derived display
// figures (cumulative quantity, VBBO) live in RowMetric and are recomputed on
// every pass, so stored and displayed state never alias each other.
type Level struct {
	Key      string
	Venue    string
	Price    decimal.Decimal
	Quantity int64
}

// RowMetric carries the per-row figures a VBBO pass derives for one
// displayed level.
type RowMetric struct {
	CumulativeQuantity int64
	WeightedPrice      decimal.Decimal
}

// LevelKey builds the composite key identifying a (venue, depth-index) slot
// on one side.
func LevelKey(venue string, depth int) string {
	return venue + "#" + strconv.Itoa(depth)
}

// priceKey renders a price rounded to 4 decimal places. Aggregation groups
// through this key, never through raw float comparison.
func priceKey(p decimal.Decimal) string {
	return p.Round(4).StringFixed(4)
}

// ParseLevel validates raw feed text at the ingestion boundary. Unparsable
// or negative values are rejected with InvalidLevelData instead of leaking
// NaN-like values into the book.
func ParseLevel(venue, priceText, quantityText string) (decimal.Decimal, int64, error) {
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return decimal.Zero, 0, &InvalidLevelData{Venue: venue, Field: "price", Value: priceText, Reason: "not a number"}
	}
	quantity, err := strconv.ParseInt(quantityText, 10, 64)
	if err != nil {
		return decimal.Zero, 0, &InvalidLevelData{Venue: venue, Field: "quantity", Value: quantityText, Reason: "not an integer"}
	}
	if quantity < 0 {
		return decimal.Zero, 0, &InvalidLevelData{Venue: venue, Field: "quantity", Value: quantityText, Reason: "negative"}
	}
	return price, quantity, nil
}
