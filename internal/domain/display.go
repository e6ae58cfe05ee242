package domain

import "github.com/shopspring/decimal"

// DisplayRow is one finished price level as handed to the rendering callback.
// Price and Vbbo are already fixed to 4 decimal places.
type DisplayRow struct {
	Row                int      `json:"row"`
	Side               SideEnum `json:"side"`
	Quantity           int64    `json:"quantity"`
	Price              string   `json:"price"`
	Venue              string   `json:"venue"`
	CumulativeQuantity int64    `json:"cumulativeQuantity"`
	Vbbo               string   `json:"vbbo"`
}

// RowRenderer receives the output of a redisplay pass. ResetWithCount is
// called exactly once, before any row is streamed.
type RowRenderer interface {
	ResetWithCount(rowCount int)
	UpdateRow(row DisplayRow)
}

type VwapSide struct {
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Level    int             `json:"level"`
}

type VwapQuote struct {
	Label    string   `json:"label"`
	Quantity int64    `json:"quantity"`
	Buy      VwapSide `json:"buy"`
	Sell     VwapSide `json:"sell"`
}

// VwapSideText mirrors VwapSide with display-ready text fields.
type VwapSideText struct {
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Level    int    `json:"level"`
}

type VwapQuoteText struct {
	Label    string       `json:"label"`
	Quantity string       `json:"quantity"`
	Buy      VwapSideText `json:"buy"`
	Sell     VwapSideText `json:"sell"`
}
