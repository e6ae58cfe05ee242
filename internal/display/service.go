package display

import (
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"consolidated-orderbook/internal/book"
	"consolidated-orderbook/internal/domain"
)

// Service owns one instrument's book view and serializes every mutating and
// displaying operation behind a single lock: an ingest batch plus the
// redisplay it triggers is atomic relative to any other accessor.
type Service struct {
	mu           sync.Mutex
	book         *book.View
	consolidated bool
	fanout       multiRenderer
	venueDepth   map[string]int
	alerter      *Alerter
	log          *zap.Logger

	// Fixed-4 renderings of the sentinel prices, used to spot market-order
	// pricing in finished rows.
	bidMarkerText    string
	offerMarkerText  string
	unknownBidText   string
	unknownOfferText string
}

func NewService(bk *book.View, consolidated bool, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	sentinels := bk.Sentinels()
	return &Service{
		book:             bk,
		consolidated:     consolidated,
		venueDepth:       make(map[string]int),
		log:              log,
		bidMarkerText:    sentinels.BidMarker.StringFixed(4),
		offerMarkerText:  sentinels.OfferMarker.StringFixed(4),
		unknownBidText:   sentinels.UnknownBid.StringFixed(4),
		unknownOfferText: sentinels.UnknownOffer.StringFixed(4),
	}
}

// AttachRenderer adds a renderer that receives every subsequent pass.
func (s *Service) AttachRenderer(r domain.RowRenderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fanout = append(s.fanout, r)
}

// OnRedisplay registers a redisplay-complete observer on the book.
func (s *Service) OnRedisplay(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.OnRedisplay(fn)
}

func (s *Service) SetAlerter(a *Alerter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerter = a
}

// Upsert records a single level update without triggering a redisplay.
func (s *Service) Upsert(side domain.SideEnum, depth int, price decimal.Decimal, quantity int64, venue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Upsert(side, depth, price, quantity, venue)
}

// ApplyVenueDepth ingests one venue's full depth as per-level upserts, clears
// any slots the venue no longer quotes, then redisplays. The whole batch runs
// under the lock as one unit.
func (s *Service) ApplyVenueDepth(depth domain.VenueDepth) error {
	s.mu.Lock()
	if err := s.applySide(domain.Buy, depth.Venue, depth.Bids); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.applySide(domain.Sell, depth.Venue, depth.Asks); err != nil {
		s.mu.Unlock()
		return err
	}
	s.book.Redisplay(s.fanout, s.consolidated)
	tainted := s.taintedRows()
	s.mu.Unlock()

	if len(tainted) > 0 && s.alerter != nil {
		go s.alerter.AlertMarketPricing(tainted)
	}
	return nil
}

func (s *Service) applySide(side domain.SideEnum, venue string, levels []domain.VenueLevel) error {
	for i, lvl := range levels {
		if err := s.book.Upsert(side, i, lvl.Price, lvl.Quantity, venue); err != nil {
			return err
		}
	}
	// Slots the venue quoted last time but not this time are removed.
	dk := venue + "|" + side.String()
	for i := len(levels); i < s.venueDepth[dk]; i++ {
		if err := s.book.Upsert(side, i, decimal.Zero, 0, venue); err != nil {
			return err
		}
	}
	s.venueDepth[dk] = len(levels)
	return nil
}

// Redisplay recomputes and streams to the attached renderers using the
// configured display mode.
func (s *Service) Redisplay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.Redisplay(s.fanout, s.consolidated)
}

// RedisplayCollect runs a pass in the requested mode and returns the rows,
// while still streaming to the attached renderers.
func (s *Service) RedisplayCollect(consolidated bool) *RowCollector {
	s.mu.Lock()
	defer s.mu.Unlock()
	collector := &RowCollector{}
	s.book.Redisplay(append(s.fanout, collector), consolidated)
	return collector
}

func (s *Service) VwapQuoteText(label string, quantity int64) domain.VwapQuoteText {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.VwapQuoteText(label, quantity)
}

func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.Reset()
	s.venueDepth = make(map[string]int)
}

// taintedRows collects the last pass's rows that show market-order pricing.
// Caller holds the lock.
func (s *Service) taintedRows() []domain.DisplayRow {
	var out []domain.DisplayRow
	for _, side := range []domain.SideEnum{domain.Buy, domain.Sell} {
		for _, row := range s.book.LastRows(side) {
			switch row.Vbbo {
			case s.unknownBidText, s.unknownOfferText, s.bidMarkerText, s.offerMarkerText:
				out = append(out, row)
			default:
				if row.Price == s.bidMarkerText || row.Price == s.offerMarkerText {
					out = append(out, row)
				}
			}
		}
	}
	return out
}

// quantityText is shared by the alerter's embed fields.
func quantityText(q int64) string {
	return strconv.FormatInt(q, 10)
}
