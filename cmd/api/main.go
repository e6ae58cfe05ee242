package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"consolidated-orderbook/internal/book"
	"consolidated-orderbook/internal/display"
	"consolidated-orderbook/internal/domain"
	"consolidated-orderbook/internal/exchange"
	"consolidated-orderbook/internal/exchange/hata"
	"consolidated-orderbook/internal/exchange/luno"
	"consolidated-orderbook/internal/platform/config"
	"consolidated-orderbook/internal/platform/logger"
	"consolidated-orderbook/internal/server"
)

func gracefulShutdown(fiberServer *server.FiberServer, cancel context.CancelFunc, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// Stop the watcher and the venue feeds first.
	cancel()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()
	if err := fiberServer.ShutdownWithContext(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := config.GetConfig()
	appLogger := logger.Get()

	view := book.New(book.Options{
		Sentinels:         cfg.SentinelSet(),
		PreferredVenue:    cfg.Display.PreferredVenue,
		ConsolidatedDepth: cfg.Display.ConsolidatedDepth,
		Logger:            logger.GetBookLogger(),
	})

	displayService := display.NewService(view, cfg.Display.Consolidated, appLogger)

	if cfg.Discord.WebhookUrl != "" {
		cooldown := time.Duration(cfg.Discord.CooldownSeconds) * time.Second
		displayService.SetAlerter(display.NewAlerter(cfg.Discord.WebhookUrl, cooldown))
	}

	venues := []exchange.Exchanger{}
	pairs := make([]string, 0)

	for name, venueConfig := range cfg.Venue {
		if !venueConfig.Enabled {
			continue
		}
		switch name {
		case domain.Luno.String():
			venues = append(venues, luno.CreateClient(venueConfig.ApiKey, venueConfig.ApiSecret, displayService, venueConfig.MaxDepth))
		case domain.Hata.String():
			venues = append(venues, hata.CreateClient(venueConfig.ApiKey, venueConfig.ApiSecret, displayService, venueConfig.MaxDepth))
		default:
			appLogger.Warn("Unknown venue in config: " + name)
			continue
		}
		for _, pair := range venueConfig.Pairs {
			if !contains(pairs, pair) {
				pairs = append(pairs, pair)
			}
		}
	}

	mode := domain.Scheduled
	if cfg.Display.WatchMode == domain.Stream.String() {
		mode = domain.Stream
	}
	interval := time.Duration(cfg.Display.RedisplayIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	watcher := display.NewBookWatcher(ctx, venues, pairs, interval, mode, displayService)
	go watcher.Start()

	fiberServer := server.New(displayService)
	fiberServer.RegisterFiberRoutes()

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go func() {
		port, _ := strconv.Atoi(os.Getenv("PORT"))
		err := fiberServer.Listen(fmt.Sprintf(":%d", port))
		if err != nil {
			panic(fmt.Sprintf("http server error: %s", err))
		}
	}()

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(fiberServer, cancel, done)

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
