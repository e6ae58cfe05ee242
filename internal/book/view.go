package book

import (
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"consolidated-orderbook/internal/domain"
)

// DefaultConsolidatedDepth caps the consolidated display at 5 rows per side.
const DefaultConsolidatedDepth = 5

// View is one instrument's consolidated, venue-aware order book plus the
// analytics derived from it. It is single-threaded by design: callers running
// across goroutines must serialize every mutating and displaying operation on
// one exclusive lock (see display.Service), treating an ingest batch plus its
// redisplay as atomic.
type View struct {
	sentinels         Sentinels
	cmp               comparator
	consolidatedDepth int

	buys  sideStore
	sells sideStore

	lastBuy  []domain.DisplayRow
	lastSell []domain.DisplayRow

	observers []func()
	log       *zap.Logger
}

type Options struct {
	Sentinels         Sentinels
	PreferredVenue    string
	ConsolidatedDepth int
	Logger            *zap.Logger
}

func New(opts Options) *View {
	if opts.ConsolidatedDepth <= 0 {
		opts.ConsolidatedDepth = DefaultConsolidatedDepth
	}
	if opts.Sentinels.OfferMarker.IsZero() && opts.Sentinels.UnknownBid.IsZero() && opts.Sentinels.UnknownOffer.IsZero() {
		opts.Sentinels = DefaultSentinels()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &View{
		sentinels:         opts.Sentinels,
		cmp:               comparator{sentinels: opts.Sentinels, preferredVenue: opts.PreferredVenue},
		consolidatedDepth: opts.ConsolidatedDepth,
		buys:              make(sideStore),
		sells:             make(sideStore),
		log:               opts.Logger,
	}
}

// Sentinels exposes the reserved prices this view was built with.
func (v *View) Sentinels() Sentinels {
	return v.sentinels
}

// Upsert records one venue level update. Quantity zero removes the slot; no
// other validation is applied here because the feed boundary already ran
// ParseLevel.
func (v *View) Upsert(side domain.SideEnum, depth int, price decimal.Decimal, quantity int64, venue string) error {
	if quantity < 0 {
		return &InvalidLevelData{Venue: venue, Field: "quantity", Value: strconv.FormatInt(quantity, 10), Reason: "negative"}
	}
	key := LevelKey(venue, depth)
	v.sideFor(side).upsert(key, Level{Key: key, Venue: venue, Price: price, Quantity: quantity})
	return nil
}

func (v *View) sideFor(side domain.SideEnum) sideStore {
	if side == domain.Buy {
		return v.buys
	}
	return v.sells
}

// Reset clears both sides and the last displayed snapshot.
func (v *View) Reset() {
	v.buys = make(sideStore)
	v.sells = make(sideStore)
	v.lastBuy = nil
	v.lastSell = nil
}

// OnRedisplay registers an observer fired after every completed redisplay
// pass. Observers receive no payload; they exist for consumers unrelated to
// row content, such as scrollbar layout.
func (v *View) OnRedisplay(fn func()) {
	v.observers = append(v.observers, fn)
}

// Redisplay recomputes the full display and streams it to the renderer:
// aggregate when consolidated, sort, truncate, VBBO, then each side's rows
// numbered independently from zero (all Buy rows, then all Sell rows).
func (v *View) Redisplay(renderer domain.RowRenderer, consolidated bool) {
	sortedBuy := v.displaySide(v.buys, domain.Buy, consolidated)
	sortedSell := v.displaySide(v.sells, domain.Sell, consolidated)

	buyMetrics := computeVBBO(v.sentinels, sortedBuy)
	sellMetrics := computeVBBO(v.sentinels, sortedSell)

	rowCount := len(sortedBuy)
	if len(sortedSell) > rowCount {
		rowCount = len(sortedSell)
	}
	renderer.ResetWithCount(rowCount)

	v.lastBuy = v.emitSide(renderer, domain.Buy, sortedBuy, buyMetrics)
	v.lastSell = v.emitSide(renderer, domain.Sell, sortedSell, sellMetrics)

	v.log.Debug("redisplay complete",
		zap.Int("rows", rowCount),
		zap.Bool("consolidated", consolidated),
	)

	for _, fn := range v.observers {
		fn()
	}
}

func (v *View) displaySide(s sideStore, side domain.SideEnum, consolidated bool) []Level {
	if consolidated {
		s = aggregate(s)
	}
	levels := s.levels()
	v.cmp.sortSide(levels, side)
	if consolidated && len(levels) > v.consolidatedDepth {
		levels = levels[:v.consolidatedDepth]
	}
	return levels
}

func (v *View) emitSide(renderer domain.RowRenderer, side domain.SideEnum, levels []Level, metrics []RowMetric) []domain.DisplayRow {
	rows := make([]domain.DisplayRow, len(levels))
	for i, lvl := range levels {
		rows[i] = domain.DisplayRow{
			Row:                i,
			Side:               side,
			Quantity:           lvl.Quantity,
			Price:              lvl.Price.StringFixed(4),
			Venue:              lvl.Venue,
			CumulativeQuantity: metrics[i].CumulativeQuantity,
			Vbbo:               metrics[i].WeightedPrice.StringFixed(4),
		}
		renderer.UpdateRow(rows[i])
	}
	return rows
}

// LastRows returns the snapshot retained by the most recent redisplay pass.
func (v *View) LastRows(side domain.SideEnum) []domain.DisplayRow {
	if side == domain.Buy {
		return v.lastBuy
	}
	return v.lastSell
}

// VwapQuote walks both raw sides (full depth, unconsolidated) for the
// requested quantity.
func (v *View) VwapQuote(label string, quantity int64) domain.VwapQuote {
	return domain.VwapQuote{
		Label:    label,
		Quantity: quantity,
		Buy:      v.vwapSide(v.buys, domain.Buy, quantity),
		Sell:     v.vwapSide(v.sells, domain.Sell, quantity),
	}
}

func (v *View) vwapSide(s sideStore, side domain.SideEnum, quantity int64) domain.VwapSide {
	levels := s.levels()
	v.cmp.sortSide(levels, side)
	res := vwapForQuantity(v.sentinels, quantity, levels)
	return domain.VwapSide{Quantity: res.Quantity, Price: res.Price, Level: res.Level}
}

// VwapQuoteText renders a quote for direct display: fixed-4 prices, decimal
// text quantities.
func (v *View) VwapQuoteText(label string, quantity int64) domain.VwapQuoteText {
	q := v.VwapQuote(label, quantity)
	return domain.VwapQuoteText{
		Label:    q.Label,
		Quantity: strconv.FormatInt(q.Quantity, 10),
		Buy:      vwapSideText(q.Buy),
		Sell:     vwapSideText(q.Sell),
	}
}

func vwapSideText(s domain.VwapSide) domain.VwapSideText {
	return domain.VwapSideText{
		Quantity: strconv.FormatInt(s.Quantity, 10),
		Price:    s.Price.StringFixed(4),
		Level:    s.Level,
	}
}
