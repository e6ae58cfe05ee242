package book

import "github.com/shopspring/decimal"

// VwapResult is the outcome of walking one side for a requested quantity.
// Level is the index of the last row that contributed fill, or -1 when no
// row contributed.
type VwapResult struct {
	Quantity int64
	Price    decimal.Decimal
	Level    int
}

// vwapForQuantity consumes the requested quantity from best price outward.
// The walk keeps observing rows after the fill completes: a market order
// anywhere in the sequence decides the reported price even when it
// contributed no quantity, so exiting early would change the result.
func vwapForQuantity(s Sentinels, requestedQty int64, sorted []Level) VwapResult {
	tracker := newTracker(s)
	remaining := requestedQty
	level := -1

	var usedQty int64
	value := decimal.Zero
	for i, lvl := range sorted {
		if lvl.Quantity <= 0 {
			continue
		}
		tracker.observe(lvl.Price)

		take := lvl.Quantity
		if take > remaining {
			take = remaining
		}
		if take > 0 {
			value = value.Add(lvl.Price.Mul(decimal.NewFromInt(take)))
			usedQty += take
			remaining -= take
			level = i
		}
	}

	return VwapResult{
		Quantity: usedQty,
		Price:    tracker.priceForQuantity(value, usedQty),
		Level:    level,
	}
}
