package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTrackerObserve(t *testing.T) {
	s := DefaultSentinels()

	t.Run("starts clean", func(t *testing.T) {
		tr := newTracker(s)
		assert.Equal(t, clean, tr.state)
		assert.False(t, tr.currentRowMarket)
	})

	t.Run("bid marker taints with bid polarity", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(s.BidMarker)
		assert.Equal(t, taintedBid, tr.state)
		assert.True(t, tr.currentRowMarket)
	})

	t.Run("offer marker taints with offer polarity", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(s.OfferMarker)
		assert.Equal(t, taintedOffer, tr.state)
		assert.True(t, tr.currentRowMarket)
	})

	t.Run("taint is sticky across later priced rows", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(s.BidMarker)
		tr.observe(dec("100.00"))
		assert.Equal(t, taintedBid, tr.state)
		assert.False(t, tr.currentRowMarket)
	})
}

func TestTrackerPriceForLevel(t *testing.T) {
	s := DefaultSentinels()

	t.Run("clean pass returns the weighted average", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(dec("100.00"))
		got := tr.priceForLevel(dec("100.00"), dec("1000"), 10)
		assert.Equal(t, "100.0000", got.StringFixed(4))
	})

	t.Run("clean pass guards division by zero", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(dec("100.00"))
		got := tr.priceForLevel(dec("100.00"), decimal.Zero, 0)
		assert.True(t, got.IsZero())
	})

	t.Run("market-order row reports its own marker price", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(s.BidMarker)
		got := tr.priceForLevel(s.BidMarker, decimal.Zero, 50)
		assert.True(t, got.Equal(s.BidMarker))
	})

	t.Run("tainted priced row reports the unknown sentinel", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(s.BidMarker)
		tr.observe(dec("100.00"))
		got := tr.priceForLevel(dec("100.00"), dec("1000"), 10)
		assert.True(t, got.Equal(s.UnknownBid))
	})

	t.Run("offer polarity selects the unknown offer sentinel", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(s.OfferMarker)
		tr.observe(dec("100.00"))
		got := tr.priceForLevel(dec("100.00"), dec("1000"), 10)
		assert.True(t, got.Equal(s.UnknownOffer))
	})
}

func TestTrackerPriceForQuantity(t *testing.T) {
	s := DefaultSentinels()

	t.Run("clean pass divides value by used quantity", func(t *testing.T) {
		tr := newTracker(s)
		got := tr.priceForQuantity(dec("1495"), 15)
		assert.Equal(t, "99.6667", got.StringFixed(4))
	})

	t.Run("clean pass with nothing used returns zero", func(t *testing.T) {
		tr := newTracker(s)
		got := tr.priceForQuantity(decimal.Zero, 0)
		assert.True(t, got.IsZero())
	})

	t.Run("tainted pass returns the marker, not the unknown variant", func(t *testing.T) {
		tr := newTracker(s)
		tr.observe(s.OfferMarker)
		got := tr.priceForQuantity(dec("1495"), 15)
		assert.True(t, got.Equal(s.OfferMarker))
		assert.False(t, got.Equal(s.UnknownOffer))
	})
}
