package book

import "github.com/shopspring/decimal"

// Sentinels holds the reserved prices the surrounding system uses to mark
// unpriced ("at market") levels on input and indeterminate best prices on
// output. Exact values are configuration, not book logic.
type Sentinels struct {
	BidMarker    decimal.Decimal
	OfferMarker  decimal.Decimal
	UnknownBid   decimal.Decimal
	UnknownOffer decimal.Decimal
}

// DefaultSentinels pins the bid marker at zero (a market buy displays as
// price 0 and sorts ahead of every priced bid). The other three only need to
// be distinct from each other and impossible as real prices.
func DefaultSentinels() Sentinels {
	return Sentinels{
		BidMarker:    decimal.Zero,
		OfferMarker:  decimal.NewFromInt(-1),
		UnknownBid:   decimal.NewFromInt(-2),
		UnknownOffer: decimal.NewFromInt(-3),
	}
}
