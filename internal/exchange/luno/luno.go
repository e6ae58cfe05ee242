package luno

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/luno/luno-go"
	"github.com/shopspring/decimal"

	"consolidated-orderbook/internal/domain"
	"consolidated-orderbook/internal/exchange"
	"consolidated-orderbook/internal/platform/logger"
)

// LunoExchange feeds the consolidated book from Luno: REST snapshots via the
// SDK and a streaming order book over the websocket feed. Each applied feed
// message collapses the resting orders into per-price depth and pushes the
// batch into the sink.
type LunoExchange struct {
	lunoClient       luno.Client
	websocketBaseUrl string
	apiKeyId         string
	apiKeySecret     string
	sink             exchange.DepthSink
	maxDepth         int

	mu     sync.Mutex
	states map[string]*lunoBookState
}

type lunoBookState struct {
	orders          map[string]lunoRestingOrder
	currentSequence int64
}

type lunoRestingOrder struct {
	side   string // "ASK" or "BID"
	price  decimal.Decimal
	volume decimal.Decimal
}

// qtyLots converts a fractional venue volume into the integer lot quantity
// the book stores (1e-8 lots, so one BTC is 100,000,000).
const qtyLotExponent = 8

const lunoWebsocketBaseUrl = "wss://ws.luno.com/api/1/stream/"

var Logger = logger.Get()
var BookLogger = logger.GetBookLogger()

func CreateClient(id string, secret string, sink exchange.DepthSink, maxDepth int) *LunoExchange {
	lunoClient := luno.NewClient()
	lunoClient.SetAuth(id, secret)

	Logger.Info("Luno client created")

	return &LunoExchange{
		lunoClient:       *lunoClient,
		websocketBaseUrl: lunoWebsocketBaseUrl,
		apiKeyId:         id,
		apiKeySecret:     secret,
		sink:             sink,
		maxDepth:         maxDepth,
		states:           make(map[string]*lunoBookState),
	}
}

func (lunoExchange *LunoExchange) GetName() string {
	return domain.Luno.String()
}

func qtyFromVolume(volume decimal.Decimal) int64 {
	return volume.Shift(qtyLotExponent).Round(0).IntPart()
}

// GetDepth fetches the venue's current depth snapshot over REST.
func (lunoExchange *LunoExchange) GetDepth(ctx context.Context, pair string) (domain.VenueDepth, error) {
	req := luno.GetOrderBookRequest{Pair: pair}
	ctx, cancel := context.WithDeadline(ctx, time.Now().Add(10*time.Second))
	defer cancel()

	res, err := lunoExchange.lunoClient.GetOrderBook(ctx, &req)
	if err != nil {
		return domain.VenueDepth{}, fmt.Errorf("failed to get Luno order book: %w", err)
	}

	output := domain.VenueDepth{
		Venue: lunoExchange.GetName(),
		Pair:  pair,
		Bids:  make([]domain.VenueLevel, 0, len(res.Bids)),
		Asks:  make([]domain.VenueLevel, 0, len(res.Asks)),
	}

	for _, bid := range res.Bids {
		if lunoExchange.maxDepth > 0 && len(output.Bids) >= lunoExchange.maxDepth {
			break
		}
		price, err := decimal.NewFromString(bid.Price.String())
		if err != nil {
			continue
		}
		volume, err := decimal.NewFromString(bid.Volume.String())
		if err != nil {
			continue
		}
		output.Bids = append(output.Bids, domain.VenueLevel{Price: price, Quantity: qtyFromVolume(volume)})
	}
	for _, ask := range res.Asks {
		if lunoExchange.maxDepth > 0 && len(output.Asks) >= lunoExchange.maxDepth {
			break
		}
		price, err := decimal.NewFromString(ask.Price.String())
		if err != nil {
			continue
		}
		volume, err := decimal.NewFromString(ask.Volume.String())
		if err != nil {
			continue
		}
		output.Asks = append(output.Asks, domain.VenueLevel{Price: price, Quantity: qtyFromVolume(volume)})
	}

	return output, nil
}

// SubscribeBook dials the streaming order book feed and keeps the sink
// updated until ctx is done.
func (lunoExchange *LunoExchange) SubscribeBook(ctx context.Context, pair string) (err error) {
	Logger.Info("Subscribing to Luno websocket for pair: " + pair)

	c, _, err := websocket.Dial(ctx, lunoExchange.websocketBaseUrl+pair, nil)
	if err != nil {
		Logger.Error("Failed to dial Luno websocket: " + err.Error())
		return err
	}
	c.SetReadLimit(-1) //Disable read limit

	err = lunoExchange.sendAuthenticationMessage(ctx, c)
	if err != nil {
		return err
	}

	// Start goroutine to read messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				Logger.Info("Received interrupt signal. Closing Luno websocket connection.")
				c.Close(websocket.StatusNormalClosure, "")
				return
			default:
				messageType, message, err := c.Read(ctx)
				if err != nil {
					Logger.Error("Failed to read message from Luno websocket: " + err.Error())
					return
				}
				if messageType != websocket.MessageText {
					Logger.Error("Received unknown message type from Luno websocket: " + strconv.Itoa(int(messageType)))
					continue
				}
				if err := lunoExchange.processOrderBookFeed(message, pair); err != nil {
					var gap *SequenceGapError
					if errors.As(err, &gap) {
						Logger.Error("Sequence number mismatch. Expected: " + strconv.FormatInt(gap.ExpectedSequence, 10) + ", got: " + strconv.FormatInt(gap.ActualSequence, 10))
						lunoExchange.resubscribeSocket(ctx, c, pair)
						return
					}
					Logger.Error("Failed to process Luno order book feed: " + err.Error())
				}
			}
		}
	}()

	return
}

func (lunoExchange *LunoExchange) resubscribeSocket(ctx context.Context, c *websocket.Conn, pair string) error {
	Logger.Info("Resubscribing to Luno websocket for pair: " + pair)

	// Close current connection and drop the stale state so the next
	// snapshot reseeds the feed.
	c.Close(websocket.StatusNormalClosure, "")

	lunoExchange.mu.Lock()
	delete(lunoExchange.states, pair)
	lunoExchange.mu.Unlock()

	return lunoExchange.SubscribeBook(ctx, pair)
}

func (lunoExchange *LunoExchange) sendAuthenticationMessage(ctx context.Context, c *websocket.Conn) error {
	authMessage := lunoWebsocketAuthenticationRequest{
		ApiKeyId:     lunoExchange.apiKeyId,
		ApiKeySecret: lunoExchange.apiKeySecret,
	}
	authMessageBytes, err := json.Marshal(authMessage)
	if err != nil {
		Logger.Error("Failed to marshal authentication message: " + err.Error())
		return err
	}

	Logger.Info("Sending authentication message to Luno websocket.")
	err = c.Write(ctx, websocket.MessageText, authMessageBytes)
	if err != nil {
		Logger.Error("Failed to send authentication message to Luno websocket: " + err.Error())
		return err
	}

	return nil
}

func (lunoExchange *LunoExchange) processOrderBookFeed(feedBytes []byte, pair string) error {
	lunoExchange.mu.Lock()
	defer lunoExchange.mu.Unlock()

	state, ok := lunoExchange.states[pair]
	if !ok {
		var feedSnapshot lunoOrderBookFeedSnapshot
		if err := json.Unmarshal(feedBytes, &feedSnapshot); err != nil {
			return fmt.Errorf("failed to unmarshal Luno order book feed snapshot: %w", err)
		}

		state = &lunoBookState{
			orders:          make(map[string]lunoRestingOrder),
			currentSequence: feedSnapshot.Sequence,
		}
		for _, ask := range feedSnapshot.Asks {
			state.orders[ask.Id] = lunoRestingOrder{side: "ASK", price: ask.Price, volume: ask.Volume}
		}
		for _, bid := range feedSnapshot.Bids {
			state.orders[bid.Id] = lunoRestingOrder{side: "BID", price: bid.Price, volume: bid.Volume}
		}
		lunoExchange.states[pair] = state

		BookLogger.Info("Seeded Luno book for pair: " + pair + " orders: " + strconv.Itoa(len(state.orders)))
		return lunoExchange.pushDepth(pair, state)
	}

	var feedMessage lunoOrderBookFeedMessage
	if err := json.Unmarshal(feedBytes, &feedMessage); err != nil {
		return fmt.Errorf("failed to unmarshal Luno order book feed: %w", err)
	}

	if err := lunoExchange.processSequenceNumber(state, feedMessage.Sequence); err != nil {
		return err
	}

	lunoExchange.applyFeedMessage(state, &feedMessage)
	return lunoExchange.pushDepth(pair, state)
}

func (lunoExchange *LunoExchange) applyFeedMessage(state *lunoBookState, feedMessage *lunoOrderBookFeedMessage) {
	for _, trade := range feedMessage.TradeUpdates {
		order, ok := state.orders[trade.MakerOrderId]
		if !ok {
			continue
		}
		newVolume := order.volume.Sub(trade.Base)
		if newVolume.Sign() <= 0 {
			delete(state.orders, trade.MakerOrderId)
		} else {
			order.volume = newVolume
			state.orders[trade.MakerOrderId] = order
		}
	}

	if feedMessage.CreateUpdate != nil {
		state.orders[feedMessage.CreateUpdate.OrderId] = lunoRestingOrder{
			side:   feedMessage.CreateUpdate.Type,
			price:  feedMessage.CreateUpdate.Price,
			volume: feedMessage.CreateUpdate.Volume,
		}
	}

	if feedMessage.DeleteUpdate != nil {
		delete(state.orders, feedMessage.DeleteUpdate.OrderId)
	}
}

// pushDepth collapses the resting orders into per-price levels, best price
// first, and hands the batch to the sink.
func (lunoExchange *LunoExchange) pushDepth(pair string, state *lunoBookState) error {
	bidVolumes := make(map[string]decimal.Decimal)
	askVolumes := make(map[string]decimal.Decimal)
	prices := make(map[string]decimal.Decimal)

	for _, order := range state.orders {
		key := order.price.String()
		prices[key] = order.price
		if order.side == "BID" {
			bidVolumes[key] = bidVolumes[key].Add(order.volume)
		} else {
			askVolumes[key] = askVolumes[key].Add(order.volume)
		}
	}

	depth := domain.VenueDepth{
		Venue: lunoExchange.GetName(),
		Pair:  pair,
		Bids:  collectLevels(bidVolumes, prices, true, lunoExchange.maxDepth),
		Asks:  collectLevels(askVolumes, prices, false, lunoExchange.maxDepth),
	}
	return lunoExchange.sink.ApplyVenueDepth(depth)
}

func collectLevels(volumes map[string]decimal.Decimal, prices map[string]decimal.Decimal, bids bool, maxDepth int) []domain.VenueLevel {
	levels := make([]domain.VenueLevel, 0, len(volumes))
	for key, volume := range volumes {
		levels = append(levels, domain.VenueLevel{Price: prices[key], Quantity: qtyFromVolume(volume)})
	}
	sort.Slice(levels, func(i, j int) bool {
		if bids {
			return levels[i].Price.GreaterThan(levels[j].Price)
		}
		return levels[i].Price.LessThan(levels[j].Price)
	})
	if maxDepth > 0 && len(levels) > maxDepth {
		levels = levels[:maxDepth]
	}
	return levels
}

func (lunoExchange *LunoExchange) processSequenceNumber(state *lunoBookState, sequence int64) error {
	previousSequence := state.currentSequence
	if sequence == previousSequence+1 {
		state.currentSequence = sequence
		return nil
	}
	return &SequenceGapError{
		ExpectedSequence: previousSequence + 1,
		ActualSequence:   sequence,
	}
}
