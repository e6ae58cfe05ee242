package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consolidated-orderbook/internal/domain"
)

func runPass(h *BookHub, rows ...domain.DisplayRow) {
	h.ResetWithCount(len(rows))
	for _, row := range rows {
		h.UpdateRow(row)
	}
	h.Flush()
}

func TestHubBroadcastsCompletedPass(t *testing.T) {
	h := NewBookHub()
	sub := h.Subscribe()

	runPass(h,
		domain.DisplayRow{Row: 0, Side: domain.Buy, Price: "100.0000", Quantity: 10},
		domain.DisplayRow{Row: 0, Side: domain.Sell, Price: "101.0000", Quantity: 4},
	)

	require.Len(t, sub, 1)
	var frame bookFrame
	require.NoError(t, json.Unmarshal(<-sub, &frame))
	assert.Equal(t, 2, frame.RowCount)
	require.Len(t, frame.Rows, 2)
	assert.Equal(t, "100.0000", frame.Rows[0].Price)
}

func TestHubPrimesNewSubscriberWithLastFrame(t *testing.T) {
	h := NewBookHub()
	runPass(h, domain.DisplayRow{Row: 0, Side: domain.Buy, Price: "100.0000"})

	sub := h.Subscribe()
	require.Len(t, sub, 1)

	var frame bookFrame
	require.NoError(t, json.Unmarshal(<-sub, &frame))
	assert.Equal(t, 1, frame.RowCount)
}

func TestHubDropsFramesForSlowSubscriber(t *testing.T) {
	h := NewBookHub()
	sub := h.Subscribe()

	// The subscriber channel buffers eight frames; further passes must not
	// block the display lock.
	for i := 0; i < 20; i++ {
		runPass(h, domain.DisplayRow{Row: 0, Side: domain.Buy, Price: "100.0000"})
	}
	assert.Len(t, sub, 8)

	h.Unsubscribe(sub)
	runPass(h, domain.DisplayRow{Row: 0, Side: domain.Buy, Price: "100.0000"})
	assert.Len(t, sub, 8)
}
