package book

import "github.com/shopspring/decimal"

// computeVBBO walks a sorted side best-first and derives cumulative quantity
// and the volume-weighted price for every displayed row. A fresh tracker per
// call keeps market-order taint from leaking across sides or passes.
func computeVBBO(s Sentinels, sorted []Level) []RowMetric {
	tracker := newTracker(s)
	metrics := make([]RowMetric, len(sorted))

	var cumulativeQty int64
	value := decimal.Zero
	for i, lvl := range sorted {
		tracker.observe(lvl.Price)
		cumulativeQty += lvl.Quantity
		value = value.Add(lvl.Price.Mul(decimal.NewFromInt(lvl.Quantity)))
		metrics[i] = RowMetric{
			CumulativeQuantity: cumulativeQty,
			WeightedPrice:      tracker.priceForLevel(lvl.Price, value, cumulativeQty),
		}
	}
	return metrics
}
