package config

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/shopspring/decimal"

	"consolidated-orderbook/internal/book"
)

type Config struct {
	Display struct {
		PreferredVenue           string
		Consolidated             bool
		ConsolidatedDepth        int
		RedisplayIntervalSeconds int
		WatchMode                string // "Scheduled" or "Stream"
	}

	// Reserved prices as fixed-point text; empty strings select the
	// built-in defaults.
	Sentinels struct {
		BidMarker    string
		OfferMarker  string
		UnknownBid   string
		UnknownOffer string
	}

	Venue map[string]struct {
		Enabled   bool
		ApiKey    string
		ApiSecret string
		Pairs     []string
		MaxDepth  int
	}

	Discord struct {
		WebhookUrl      string
		CooldownSeconds int
	}

	Database struct {
		Path string
	}
}

var once sync.Once
var config *Config

func GetConfig() *Config {
	once.Do(func() {
		configBytes, err := os.ReadFile("config.json")
		if err != nil {
			panic(err)
		}
		if err := json.Unmarshal(configBytes, &config); err != nil {
			panic(err)
		}
	})

	return config
}

// SentinelSet parses the configured reserved prices, falling back to the
// book defaults for any value left empty.
func (c *Config) SentinelSet() book.Sentinels {
	s := book.DefaultSentinels()
	if d, err := decimal.NewFromString(c.Sentinels.BidMarker); err == nil && c.Sentinels.BidMarker != "" {
		s.BidMarker = d
	}
	if d, err := decimal.NewFromString(c.Sentinels.OfferMarker); err == nil && c.Sentinels.OfferMarker != "" {
		s.OfferMarker = d
	}
	if d, err := decimal.NewFromString(c.Sentinels.UnknownBid); err == nil && c.Sentinels.UnknownBid != "" {
		s.UnknownBid = d
	}
	if d, err := decimal.NewFromString(c.Sentinels.UnknownOffer); err == nil && c.Sentinels.UnknownOffer != "" {
		s.UnknownOffer = d
	}
	return s
}
