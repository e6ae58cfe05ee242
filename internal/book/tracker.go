package book

import "github.com/shopspring/decimal"

// taintState is the tracker's state machine. A pass starts clean and, once
// any market order has been observed, never returns to clean: every later
// row in the same pass is treated as tainted.
type taintState int

const (
	clean taintState = iota
	taintedBid
	taintedOffer
)

// marketOrderTracker holds the transient scan state shared by the VBBO and
// VWAP walks. One tracker per side per pass; never reused across sides or
// passes.
type marketOrderTracker struct {
	sentinels        Sentinels
	state            taintState
	currentRowMarket bool
}

func newTracker(s Sentinels) *marketOrderTracker {
	return &marketOrderTracker{sentinels: s}
}

// observe records the price of the row about to be processed. The bid/offer
// polarity sticks to the most recent marker seen.
func (t *marketOrderTracker) observe(price decimal.Decimal) {
	switch {
	case price.Equal(t.sentinels.BidMarker):
		t.currentRowMarket = true
		t.state = taintedBid
	case price.Equal(t.sentinels.OfferMarker):
		t.currentRowMarket = true
		t.state = taintedOffer
	default:
		t.currentRowMarket = false
	}
}

// priceForLevel picks the VBBO figure for the row just observed: the row's
// own marker price when it is itself a market order, the unknown sentinel
// when an earlier market order tainted the pass, otherwise the cumulative
// weighted price.
func (t *marketOrderTracker) priceForLevel(price, cumulativeValue decimal.Decimal, cumulativeQty int64) decimal.Decimal {
	if t.state != clean {
		if t.currentRowMarket {
			return price
		}
		if t.state == taintedBid {
			return t.sentinels.UnknownBid
		}
		return t.sentinels.UnknownOffer
	}
	if cumulativeQty > 0 {
		return cumulativeValue.Div(decimal.NewFromInt(cumulativeQty))
	}
	return decimal.Zero
}

// priceForQuantity picks the final VWAP price. A tainted pass reports the
// bid/offer marker itself, not the unknown variant.
func (t *marketOrderTracker) priceForQuantity(value decimal.Decimal, usedQty int64) decimal.Decimal {
	switch t.state {
	case taintedBid:
		return t.sentinels.BidMarker
	case taintedOffer:
		return t.sentinels.OfferMarker
	}
	if usedQty > 0 {
		return value.Div(decimal.NewFromInt(usedQty))
	}
	return decimal.Zero
}
