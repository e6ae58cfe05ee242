package server

import (
	"encoding/json"
	"sync"

	"consolidated-orderbook/internal/domain"
	"consolidated-orderbook/internal/platform/logger"
)

var Logger = logger.Get()

// bookFrame is one complete redisplay pass as sent to websocket clients.
type bookFrame struct {
	RowCount int                 `json:"rowCount"`
	Rows     []domain.DisplayRow `json:"rows"`
}

// BookHub buffers the rows of the pass in flight and, on Flush, broadcasts
// the finished frame to every subscriber. It implements domain.RowRenderer,
// so it attaches to the display service like any other renderer.
//
// ResetWithCount, UpdateRow and Flush are invoked under the display service's
// lock, so the broadcast must never block: slow subscribers drop frames.
type BookHub struct {
	mu          sync.Mutex
	pending     bookFrame
	lastFrame   []byte
	subscribers map[chan []byte]struct{}
}

func NewBookHub() *BookHub {
	return &BookHub{
		subscribers: make(map[chan []byte]struct{}),
	}
}

func (h *BookHub) ResetWithCount(rowCount int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = bookFrame{RowCount: rowCount, Rows: make([]domain.DisplayRow, 0, 2*rowCount)}
}

func (h *BookHub) UpdateRow(row domain.DisplayRow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending.Rows = append(h.pending.Rows, row)
}

// Flush broadcasts the buffered pass. Wired as a redisplay-complete observer.
func (h *BookHub) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()

	frameBytes, err := json.Marshal(h.pending)
	if err != nil {
		Logger.Error("Failed to marshal book frame: " + err.Error())
		return
	}
	h.lastFrame = frameBytes

	for sub := range h.subscribers {
		select {
		case sub <- frameBytes:
		default:
			// Subscriber is not keeping up; it will catch up on the next pass.
		}
	}
}

// Subscribe registers a new client and returns its frame channel, primed with
// the most recent frame if one exists.
func (h *BookHub) Subscribe() chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := make(chan []byte, 8)
	if h.lastFrame != nil {
		sub <- h.lastFrame
	}
	h.subscribers[sub] = struct{}{}
	return sub
}

func (h *BookHub) Unsubscribe(sub chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
}
