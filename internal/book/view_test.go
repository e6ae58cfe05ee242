package book

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consolidated-orderbook/internal/domain"
)

// recordingRenderer captures the callback sequence of one redisplay pass.
type recordingRenderer struct {
	resetCalls []int
	rows       []domain.DisplayRow
}

func (r *recordingRenderer) ResetWithCount(n int) { r.resetCalls = append(r.resetCalls, n) }

func (r *recordingRenderer) UpdateRow(row domain.DisplayRow) { r.rows = append(r.rows, row) }

func (r *recordingRenderer) sideRows(side domain.SideEnum) []domain.DisplayRow {
	var out []domain.DisplayRow
	for _, row := range r.rows {
		if row.Side == side {
			out = append(out, row)
		}
	}
	return out
}

func populatedView(t *testing.T) *View {
	t.Helper()
	v := New(Options{PreferredVenue: "LUNO"})
	for i := 0; i < 7; i++ {
		price := dec("100.0000").Sub(dec(strconv.Itoa(i)))
		require.NoError(t, v.Upsert(domain.Buy, i, price, 10, "LUNO"))
		require.NoError(t, v.Upsert(domain.Buy, i, price.Sub(dec("0.5")), 10, "HATA"))
		ask := dec("101.0000").Add(dec(strconv.Itoa(i)))
		require.NoError(t, v.Upsert(domain.Sell, i, ask, 10, "LUNO"))
	}
	return v
}

func TestRedisplayConsolidatedTruncation(t *testing.T) {
	v := populatedView(t)
	r := &recordingRenderer{}

	v.Redisplay(r, true)

	require.Equal(t, []int{5}, r.resetCalls)
	assert.Len(t, r.sideRows(domain.Buy), 5)
	assert.Len(t, r.sideRows(domain.Sell), 5)

	// Consolidated rows carry no single venue.
	for _, row := range r.rows {
		assert.Equal(t, "", row.Venue)
	}
}

func TestRedisplayUnconsolidatedUnbounded(t *testing.T) {
	v := populatedView(t)
	r := &recordingRenderer{}

	v.Redisplay(r, false)

	require.Equal(t, []int{14}, r.resetCalls)
	assert.Len(t, r.sideRows(domain.Buy), 14)
	assert.Len(t, r.sideRows(domain.Sell), 7)
}

func TestRedisplayRowNumberingAndText(t *testing.T) {
	v := New(Options{})
	require.NoError(t, v.Upsert(domain.Buy, 0, dec("100.00"), 10, "LUNO"))
	require.NoError(t, v.Upsert(domain.Buy, 1, dec("99.00"), 10, "LUNO"))
	require.NoError(t, v.Upsert(domain.Sell, 0, dec("101.00"), 4, "HATA"))

	r := &recordingRenderer{}
	v.Redisplay(r, false)

	buys := r.sideRows(domain.Buy)
	sells := r.sideRows(domain.Sell)
	require.Len(t, buys, 2)
	require.Len(t, sells, 1)

	// Rows are numbered from zero independently per side.
	assert.Equal(t, 0, buys[0].Row)
	assert.Equal(t, 1, buys[1].Row)
	assert.Equal(t, 0, sells[0].Row)

	// Prices and VBBO render as fixed-4 text.
	assert.Equal(t, "100.0000", buys[0].Price)
	assert.Equal(t, "100.0000", buys[0].Vbbo)
	assert.Equal(t, int64(10), buys[0].CumulativeQuantity)
	assert.Equal(t, "99.5000", buys[1].Vbbo)
	assert.Equal(t, int64(20), buys[1].CumulativeQuantity)
	assert.Equal(t, "101.0000", sells[0].Price)

	// All buy rows stream before any sell row.
	assert.Equal(t, domain.Buy, r.rows[0].Side)
	assert.Equal(t, domain.Sell, r.rows[len(r.rows)-1].Side)
}

func TestRedisplayAfterReset(t *testing.T) {
	v := populatedView(t)
	v.Reset()

	r := &recordingRenderer{}
	v.Redisplay(r, true)

	require.Equal(t, []int{0}, r.resetCalls)
	assert.Empty(t, r.rows)
}

func TestRedisplayNotifiesObservers(t *testing.T) {
	v := populatedView(t)
	calls := 0
	v.OnRedisplay(func() { calls++ })

	v.Redisplay(&nopRenderer{}, true)
	v.Redisplay(&nopRenderer{}, false)

	assert.Equal(t, 2, calls)
}

func TestRedisplayRetainsSnapshot(t *testing.T) {
	v := populatedView(t)
	v.Redisplay(&nopRenderer{}, true)

	assert.Len(t, v.LastRows(domain.Buy), 5)
	assert.Len(t, v.LastRows(domain.Sell), 5)
}

func TestRedisplayConsolidatedMergesAcrossVenues(t *testing.T) {
	v := New(Options{})
	require.NoError(t, v.Upsert(domain.Buy, 0, dec("10.00001"), 5, "LUNO"))
	require.NoError(t, v.Upsert(domain.Buy, 0, dec("9.99996"), 3, "HATA"))

	r := &recordingRenderer{}
	v.Redisplay(r, true)

	buys := r.sideRows(domain.Buy)
	require.Len(t, buys, 1)
	assert.Equal(t, "10.0000", buys[0].Price)
	assert.Equal(t, int64(8), buys[0].Quantity)
}

func TestVwapQuote(t *testing.T) {
	v := New(Options{})
	require.NoError(t, v.Upsert(domain.Buy, 0, dec("100.00"), 10, "LUNO"))
	require.NoError(t, v.Upsert(domain.Buy, 1, dec("99.00"), 10, "LUNO"))
	require.NoError(t, v.Upsert(domain.Sell, 0, dec("101.00"), 10, "LUNO"))

	q := v.VwapQuote("BTCMYR", 15)

	assert.Equal(t, "BTCMYR", q.Label)
	assert.Equal(t, int64(15), q.Quantity)
	assert.Equal(t, int64(15), q.Buy.Quantity)
	assert.Equal(t, "99.6667", q.Buy.Price.StringFixed(4))
	assert.Equal(t, 1, q.Buy.Level)
	assert.Equal(t, int64(10), q.Sell.Quantity)
	assert.Equal(t, 0, q.Sell.Level)

	t.Run("text variant renders fixed-4 prices and text quantities", func(t *testing.T) {
		qt := v.VwapQuoteText("BTCMYR", 15)
		assert.Equal(t, "15", qt.Quantity)
		assert.Equal(t, "99.6667", qt.Buy.Price)
		assert.Equal(t, "15", qt.Buy.Quantity)
		assert.Equal(t, "10", qt.Sell.Quantity)
		assert.Equal(t, 1, qt.Buy.Level)
	})
}
