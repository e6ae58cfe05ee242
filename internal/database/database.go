package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"consolidated-orderbook/internal/domain"
	"consolidated-orderbook/internal/platform/config"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// SaveQuote persists one VWAP quote as served.
	SaveQuote(ctx context.Context, quote domain.VwapQuoteText) error

	// RecentQuotes returns the most recently saved quotes, newest first.
	RecentQuotes(ctx context.Context, limit int) ([]QuoteRecord, error)

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
}

// QuoteRecord is one persisted VWAP quote row.
type QuoteRecord struct {
	Id        int64  `json:"id"`
	Label     string `json:"label"`
	Quantity  string `json:"quantity"`
	BuyPrice  string `json:"buyPrice"`
	BuyLevel  int    `json:"buyLevel"`
	SellPrice string `json:"sellPrice"`
	SellLevel int    `json:"sellLevel"`
	CreatedAt string `json:"createdAt"`
}

type service struct {
	db *sql.DB
}

var dbInstance *service

const schema = `
CREATE TABLE IF NOT EXISTS vwap_quotes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	label TEXT NOT NULL,
	quantity TEXT NOT NULL,
	buy_price TEXT NOT NULL,
	buy_level INTEGER NOT NULL,
	sell_price TEXT NOT NULL,
	sell_level INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

func New() Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}

	dburl := config.GetConfig().Database.Path
	if dburl == "" {
		dburl = "orderbook.db"
	}

	db, err := sql.Open("sqlite3", dburl)
	if err != nil {
		// This will not be a connection error, but a DSN parse error or
		// another initialization error.
		log.Fatal(err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatal(err)
	}

	dbInstance = &service{
		db: db,
	}
	return dbInstance
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	// Ping the database
	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	// Database is up, add more statistics
	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)

	return stats
}

func (s *service) SaveQuote(ctx context.Context, quote domain.VwapQuoteText) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vwap_quotes (label, quantity, buy_price, buy_level, sell_price, sell_level)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		quote.Label, quote.Quantity,
		quote.Buy.Price, quote.Buy.Level,
		quote.Sell.Price, quote.Sell.Level,
	)
	if err != nil {
		return fmt.Errorf("failed to save vwap quote: %w", err)
	}
	return nil
}

func (s *service) RecentQuotes(ctx context.Context, limit int) ([]QuoteRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, quantity, buy_price, buy_level, sell_price, sell_level, created_at
		 FROM vwap_quotes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query vwap quotes: %w", err)
	}
	defer rows.Close()

	var records []QuoteRecord
	for rows.Next() {
		var r QuoteRecord
		if err := rows.Scan(&r.Id, &r.Label, &r.Quantity, &r.BuyPrice, &r.BuyLevel, &r.SellPrice, &r.SellLevel, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vwap quote: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database connection.
// If the connection is successfully closed, it returns nil.
func (s *service) Close() error {
	log.Println("Disconnected from database")
	return s.db.Close()
}
