package display

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consolidated-orderbook/internal/book"
	"consolidated-orderbook/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newService(t *testing.T, consolidated bool) *Service {
	t.Helper()
	view := book.New(book.Options{PreferredVenue: "LUNO"})
	return NewService(view, consolidated, nil)
}

func level(price string, quantity int64) domain.VenueLevel {
	return domain.VenueLevel{Price: dec(price), Quantity: quantity}
}

func TestApplyVenueDepthStreamsToAttachedRenderer(t *testing.T) {
	s := newService(t, false)
	r := &RowCollector{}
	s.AttachRenderer(r)

	err := s.ApplyVenueDepth(domain.VenueDepth{
		Venue: "LUNO",
		Pair:  "XBTMYR",
		Bids:  []domain.VenueLevel{level("100.50", 10), level("100.00", 5)},
		Asks:  []domain.VenueLevel{level("101.00", 7)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, r.RowCount)
	assert.Len(t, r.Rows, 3)
	assert.Equal(t, "100.5000", r.Rows[0].Price)
	assert.Equal(t, domain.Buy, r.Rows[0].Side)
}

func TestApplyVenueDepthClearsStaleSlots(t *testing.T) {
	s := newService(t, false)
	r := &RowCollector{}
	s.AttachRenderer(r)

	require.NoError(t, s.ApplyVenueDepth(domain.VenueDepth{
		Venue: "LUNO",
		Bids:  []domain.VenueLevel{level("100.50", 10), level("100.00", 5), level("99.50", 3)},
	}))

	// The venue now quotes a single bid; the two deeper slots must vanish.
	require.NoError(t, s.ApplyVenueDepth(domain.VenueDepth{
		Venue: "LUNO",
		Bids:  []domain.VenueLevel{level("101.00", 7)},
	}))

	require.Len(t, r.Rows, 1)
	assert.Equal(t, "101.0000", r.Rows[0].Price)
	assert.EqualValues(t, 7, r.Rows[0].Quantity)
}

func TestApplyVenueDepthKeepsOtherVenueLevels(t *testing.T) {
	s := newService(t, false)
	r := &RowCollector{}
	s.AttachRenderer(r)

	require.NoError(t, s.ApplyVenueDepth(domain.VenueDepth{
		Venue: "HATA",
		Bids:  []domain.VenueLevel{level("99.00", 4)},
	}))
	require.NoError(t, s.ApplyVenueDepth(domain.VenueDepth{
		Venue: "LUNO",
		Bids:  []domain.VenueLevel{level("100.00", 6)},
	}))

	require.Len(t, r.Rows, 2)
	assert.Equal(t, "100.0000", r.Rows[0].Price)
	assert.Equal(t, "LUNO", r.Rows[0].Venue)
	assert.Equal(t, "99.0000", r.Rows[1].Price)
	assert.Equal(t, "HATA", r.Rows[1].Venue)
}

func TestRedisplayCollectOverridesDisplayMode(t *testing.T) {
	s := newService(t, true)

	require.NoError(t, s.Upsert(domain.Buy, 0, dec("100.00"), 10, "LUNO"))
	require.NoError(t, s.Upsert(domain.Buy, 0, dec("100.00"), 5, "HATA"))

	consolidated := s.RedisplayCollect(true)
	require.Len(t, consolidated.Rows, 1)
	assert.EqualValues(t, 15, consolidated.Rows[0].Quantity)

	raw := s.RedisplayCollect(false)
	assert.Len(t, raw.Rows, 2)
}

func TestTaintedRowsDetectMarketOrderPricing(t *testing.T) {
	s := newService(t, false)

	// A market bid taints the VBBO of every later priced bid row.
	require.NoError(t, s.Upsert(domain.Buy, 0, decimal.Zero, 10, "LUNO"))
	require.NoError(t, s.Upsert(domain.Buy, 1, dec("100.00"), 5, "LUNO"))

	s.Redisplay()

	s.mu.Lock()
	tainted := s.taintedRows()
	s.mu.Unlock()

	require.Len(t, tainted, 2)
	assert.Equal(t, s.bidMarkerText, tainted[0].Price)
	assert.Equal(t, s.unknownBidText, tainted[1].Vbbo)
}

func TestVwapQuoteTextThroughService(t *testing.T) {
	s := newService(t, false)

	require.NoError(t, s.Upsert(domain.Sell, 0, dec("101.00"), 10, "LUNO"))
	require.NoError(t, s.Upsert(domain.Buy, 0, dec("100.00"), 10, "LUNO"))

	quote := s.VwapQuoteText("client-7", 10)
	assert.Equal(t, "client-7", quote.Label)
	assert.Equal(t, "100.0000", quote.Buy.Price)
	assert.Equal(t, "101.0000", quote.Sell.Price)
	assert.Equal(t, 0, quote.Buy.Level)
}

func TestResetClearsBookAndVenueDepths(t *testing.T) {
	s := newService(t, false)
	r := &RowCollector{}
	s.AttachRenderer(r)

	require.NoError(t, s.ApplyVenueDepth(domain.VenueDepth{
		Venue: "LUNO",
		Bids:  []domain.VenueLevel{level("100.00", 10)},
	}))
	s.Reset()
	s.Redisplay()

	assert.Equal(t, 0, r.RowCount)
	assert.Empty(t, r.Rows)
}
