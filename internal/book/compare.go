package book

import (
	"sort"

	"github.com/shopspring/decimal"

	"consolidated-orderbook/internal/domain"
)

// comparator carries the two per-side total orders used for display.
type comparator struct {
	sentinels      Sentinels
	preferredVenue string
}

// lessBuy orders the buy side: market-priced levels ahead of every priced
// level, then higher prices first, ties through lessCommon.
func (c comparator) lessBuy(a, b Level) bool {
	aMarket := c.isMarketBuy(a.Price)
	bMarket := c.isMarketBuy(b.Price)
	switch {
	case aMarket && bMarket:
		return c.lessCommon(a, b)
	case aMarket:
		return true
	case bMarket:
		return false
	}
	if cmp := a.Price.Cmp(b.Price); cmp != 0 {
		return cmp > 0
	}
	return c.lessCommon(a, b)
}

// lessSell orders the sell side: lower price first with no market special
// case (a sell at zero sorts first naturally), ties through lessCommon.
func (c comparator) lessSell(a, b Level) bool {
	if cmp := a.Price.Cmp(b.Price); cmp != 0 {
		return cmp < 0
	}
	return c.lessCommon(a, b)
}

// lessCommon breaks price ties: larger quantity first, then the preferred
// venue ahead of anything else, then plain lexicographic venue order. Under
// a stable sort the last rule makes the left operand prior only when its
// venue is strictly smaller, which reproduces the original tie-break.
func (c comparator) lessCommon(a, b Level) bool {
	if a.Quantity != b.Quantity {
		return a.Quantity > b.Quantity
	}
	if a.Venue != b.Venue {
		if a.Venue == c.preferredVenue {
			return true
		}
		if b.Venue == c.preferredVenue {
			return false
		}
	}
	return a.Venue < b.Venue
}

// isMarketBuy reports whether a buy-side price is the auction/open-cross
// marker.
func (c comparator) isMarketBuy(p decimal.Decimal) bool {
	return p.IsZero() || p.Equal(c.sentinels.BidMarker)
}

// sortSide orders levels in place into display order, best level first.
func (c comparator) sortSide(levels []Level, side domain.SideEnum) {
	less := c.lessBuy
	if side == domain.Sell {
		less = c.lessSell
	}
	sort.SliceStable(levels, func(i, j int) bool {
		return less(levels[i], levels[j])
	})
}
