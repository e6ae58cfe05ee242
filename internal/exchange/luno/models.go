package luno

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type SequenceGapError struct {
	ExpectedSequence int64
	ActualSequence   int64
}

func (e *SequenceGapError) Error() string {
	return fmt.Sprintf("sequence number mismatch. Expected: %d, got: %d", e.ExpectedSequence, e.ActualSequence)
}

type lunoWebsocketAuthenticationRequest struct {
	ApiKeyId     string `json:"api_key_id"`
	ApiKeySecret string `json:"api_key_secret"`
}

type lunoOrderBookFeedSnapshot struct {
	Sequence  int64           `json:"sequence,string"`
	Asks      []lunoFeedOrder `json:"asks"`
	Bids      []lunoFeedOrder `json:"bids"`
	Status    string          `json:"status"`
	Timestamp int64           `json:"timestamp"`
}

type lunoFeedOrder struct {
	Id     string          `json:"id"`
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
}

type lunoOrderBookFeedMessage struct {
	Sequence     int64                 `json:"sequence,string"`
	TradeUpdates []lunoFeedTradeUpdate `json:"trade_updates"`
	CreateUpdate *lunoFeedCreateUpdate `json:"create_update"`
	DeleteUpdate *lunoFeedDeleteUpdate `json:"delete_update"`
	StatusUpdate *lunoFeedStatusUpdate `json:"status_update"`
	Timestamp    int64                 `json:"timestamp"`
}

type lunoFeedTradeUpdate struct {
	Sequence     int64           `json:"sequence"`
	Base         decimal.Decimal `json:"base"`
	Counter      decimal.Decimal `json:"counter"`
	MakerOrderId string          `json:"maker_order_id"`
	TakerOrderId string          `json:"taker_order_id"`
}

type lunoFeedCreateUpdate struct {
	OrderId string          `json:"order_id"`
	Type    string          `json:"type"` // "ASK" or "BID"
	Price   decimal.Decimal `json:"price"`
	Volume  decimal.Decimal `json:"volume"`
}

type lunoFeedDeleteUpdate struct {
	OrderId string `json:"order_id"`
}

type lunoFeedStatusUpdate struct {
	Status string `json:"status"`
}
