package server

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"consolidated-orderbook/internal/database"
)

func (s *FiberServer) RegisterFiberRoutes() {
	s.App.Get("/health", s.healthHandler)

	s.App.Get("/api/book", s.bookHandler)
	s.App.Get("/api/vwap", s.vwapHandler)
	s.App.Get("/api/vwap/history", s.vwapHistoryHandler)

	s.App.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.App.Get("/ws/book", websocket.New(s.bookSocketHandler))
}

func (s *FiberServer) healthHandler(c *fiber.Ctx) error {
	return c.JSON(s.db.Health())
}

// bookHandler runs a redisplay pass and returns the finished rows. The
// consolidated query flag overrides the configured display mode for this
// request only.
func (s *FiberServer) bookHandler(c *fiber.Ctx) error {
	consolidated := c.QueryBool("consolidated", true)
	collector := s.display.RedisplayCollect(consolidated)

	return c.JSON(fiber.Map{
		"rowCount": collector.RowCount,
		"rows":     collector.Rows,
	})
}

// vwapHandler quotes both sides for the requested quantity and persists the
// quote as served.
func (s *FiberServer) vwapHandler(c *fiber.Ctx) error {
	label := c.Query("label", "")
	qtyText := c.Query("qty", "")
	qty, err := strconv.ParseInt(qtyText, 10, 64)
	if err != nil || qty <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "qty must be a positive integer",
		})
	}

	quote := s.display.VwapQuoteText(label, qty)

	if err := s.db.SaveQuote(c.Context(), quote); err != nil {
		Logger.Error("Failed to persist vwap quote: " + err.Error())
	}

	return c.JSON(quote)
}

func (s *FiberServer) vwapHistoryHandler(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	records, err := s.db.RecentQuotes(c.Context(), limit)
	if err != nil {
		Logger.Error("Failed to load vwap quote history: " + err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load quote history",
		})
	}
	if records == nil {
		records = make([]database.QuoteRecord, 0)
	}
	return c.JSON(records)
}

// bookSocketHandler streams one JSON frame per completed redisplay pass.
func (s *FiberServer) bookSocketHandler(c *websocket.Conn) {
	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	// Reads are only used to detect the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case frame := <-sub:
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}
