package display

import (
	"context"
	"time"

	"go.uber.org/zap"

	"consolidated-orderbook/internal/domain"
	"consolidated-orderbook/internal/exchange"
	"consolidated-orderbook/internal/platform/logger"
)

var Logger = logger.Get()

// BookWatcher drives the consolidated display: either on a schedule (poll
// every venue's depth snapshot, ingest, redisplay) or by subscribing to the
// venues' streaming feeds.
type BookWatcher struct {
	Venues   []exchange.Exchanger
	Pairs    []string
	Interval time.Duration
	Mode     domain.WatchModeEnum
	service  *Service
	ticker   *time.Ticker
	ctx      context.Context
}

func NewBookWatcher(ctx context.Context, venues []exchange.Exchanger, pairs []string, interval time.Duration, mode domain.WatchModeEnum, service *Service) *BookWatcher {
	return &BookWatcher{ctx: ctx, Venues: venues, Pairs: pairs, Interval: interval, Mode: mode, service: service}
}

func (watcher *BookWatcher) Start() {
	if watcher.Mode == domain.Scheduled {
		watcher.StartScheduled()
	} else if watcher.Mode == domain.Stream {
		watcher.StartStream()
	}
}

func (watcher *BookWatcher) StartScheduled() {
	watcher.ticker = time.NewTicker(watcher.Interval)
	defer watcher.ticker.Stop()

	// Run immediately first time
	for _, pair := range watcher.Pairs {
		Logger.Info("Start watching " + pair + " every " + watcher.Interval.String())
		watcher.WatchOnce(pair)
	}

	// Then run on ticker
	for {
		select {
		case <-watcher.ctx.Done():
			Logger.Info("Stop watching")
			return
		case <-watcher.ticker.C:
			for _, pair := range watcher.Pairs {
				watcher.WatchOnce(pair)
			}
		}
	}
}

func (watcher *BookWatcher) StartStream() {
	for _, venue := range watcher.Venues {
		for _, pair := range watcher.Pairs {
			Logger.Info("Start streaming " + pair + " on " + venue.GetName())
			if err := venue.SubscribeBook(watcher.ctx, pair); err != nil {
				Logger.Error("Failed to subscribe to "+venue.GetName(), zap.Error(err))
			}
		}
	}
}

// WatchOnce fetches every venue's snapshot in parallel, then ingests each
// result and redisplays. A venue that fails or times out keeps its previous
// levels until the next round.
func (watcher *BookWatcher) WatchOnce(pair string) {
	ctx, cancel := context.WithTimeout(watcher.ctx, watcher.Interval)
	defer cancel()

	depths := make([]domain.VenueDepth, len(watcher.Venues))
	errCh := make(chan error, len(watcher.Venues))

	for i, venue := range watcher.Venues {
		go func(i int, venue exchange.Exchanger) {
			depth, err := venue.GetDepth(ctx, pair)
			if err != nil {
				errCh <- err
				return
			}
			depths[i] = depth
			errCh <- nil
		}(i, venue)
	}

	for i := range watcher.Venues {
		select {
		case <-ctx.Done():
			Logger.Error("Timeout while getting depth for " + watcher.Venues[i].GetName() + " Symbol:" + pair)
			return
		case err := <-errCh:
			if err != nil {
				Logger.Error("Failed to get depth for " + watcher.Venues[i].GetName() + " Symbol:" + pair + " Error:" + err.Error())
			}
		}
	}

	for _, depth := range depths {
		if depth.Venue == "" {
			continue
		}
		if err := watcher.service.ApplyVenueDepth(depth); err != nil {
			Logger.Error("Failed to ingest depth for "+depth.Venue+" Symbol:"+pair, zap.Error(err))
		}
	}
}
