package domain

import "github.com/shopspring/decimal"

// VenueLevel is one raw price level as delivered by a venue feed, quantity
// already normalized to integer lots.
type VenueLevel struct {
	Price    decimal.Decimal
	Quantity int64
}

// VenueDepth is one venue's view of a single instrument, best price first on
// both sides.
type VenueDepth struct {
	Venue string
	Pair  string
	Bids  []VenueLevel
	Asks  []VenueLevel
}
