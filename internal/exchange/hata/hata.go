package hata

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"consolidated-orderbook/internal/domain"
	"consolidated-orderbook/internal/exchange"
	"consolidated-orderbook/internal/platform/logger"
)

// HataExchange polls Hata's signed REST order book endpoint. The venue has no
// public incremental feed, so SubscribeBook is a poll loop over GetDepth.
type HataExchange struct {
	apiBaseUrl   string
	apiKeyId     string
	apiKeySecret string
	sink         exchange.DepthSink
	maxDepth     int
	pollInterval time.Duration
	httpClient   http.Client
}

type hataOrderBookPriceFeed struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"qty"`
}

type hataOrderBookResponse struct {
	Data struct {
		Asks []hataOrderBookPriceFeed `json:"asks"`
		Bids []hataOrderBookPriceFeed `json:"bids"`
	} `json:"data"`
	Status string `json:"status"`
}

const hataApiBaseUrl = "https://my-api.hata.io"
const hataPollInterval = 2 * time.Second
const qtyLotExponent = 8

var Logger = logger.Get()
var BookLogger = logger.GetBookLogger()

func CreateClient(id string, secret string, sink exchange.DepthSink, maxDepth int) *HataExchange {
	Logger.Info("Hata client created")

	return &HataExchange{
		apiBaseUrl:   hataApiBaseUrl,
		apiKeyId:     id,
		apiKeySecret: secret,
		sink:         sink,
		maxDepth:     maxDepth,
		pollInterval: hataPollInterval,
		httpClient:   http.Client{Timeout: 10 * time.Second},
	}
}

func (hataExchange *HataExchange) GetName() string {
	return domain.Hata.String()
}

// GetDepth fetches the venue's current depth snapshot. Hata returns levels
// best price first on both sides already.
func (hataExchange *HataExchange) GetDepth(ctx context.Context, pair string) (domain.VenueDepth, error) {
	params := url.Values{}
	params.Set("pair_name", pair)
	queryString := params.Encode()

	mac := hmac.New(sha256.New, []byte(hataExchange.apiKeySecret))
	mac.Write([]byte(queryString))
	signature := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, "GET", hataExchange.apiBaseUrl+"/orderbook/api/orderbook?"+queryString, nil)
	if err != nil {
		Logger.Error("Error creating request: " + err.Error())
		return domain.VenueDepth{}, err
	}
	req.Header.Set("X-API-Key", hataExchange.apiKeyId)
	req.Header.Set("Signature", signature)

	Logger.Info("Getting Hata order book for pair: " + pair)

	resp, err := hataExchange.httpClient.Do(req)
	if err != nil {
		Logger.Error("Error sending request: " + err.Error())
		return domain.VenueDepth{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		Logger.Error("Error reading response body: " + err.Error())
		return domain.VenueDepth{}, err
	} else {
		BookLogger.Info(string(respBody))
	}

	var respData hataOrderBookResponse
	err = json.Unmarshal(respBody, &respData)
	if err != nil {
		Logger.Error("Error unmarshalling response body: " + err.Error())
		return domain.VenueDepth{}, err
	}
	if respData.Status != "" && respData.Status != "success" {
		return domain.VenueDepth{}, fmt.Errorf("hata order book request failed with status: %s", respData.Status)
	}

	output := domain.VenueDepth{
		Venue: hataExchange.GetName(),
		Pair:  pair,
		Bids:  make([]domain.VenueLevel, 0, len(respData.Data.Bids)),
		Asks:  make([]domain.VenueLevel, 0, len(respData.Data.Asks)),
	}

	for _, bid := range respData.Data.Bids {
		if hataExchange.maxDepth > 0 && len(output.Bids) >= hataExchange.maxDepth {
			break
		}
		output.Bids = append(output.Bids, domain.VenueLevel{
			Price:    bid.Price,
			Quantity: bid.Volume.Shift(qtyLotExponent).Round(0).IntPart(),
		})
	}
	for _, ask := range respData.Data.Asks {
		if hataExchange.maxDepth > 0 && len(output.Asks) >= hataExchange.maxDepth {
			break
		}
		output.Asks = append(output.Asks, domain.VenueLevel{
			Price:    ask.Price,
			Quantity: ask.Volume.Shift(qtyLotExponent).Round(0).IntPart(),
		})
	}

	return output, nil
}

// SubscribeBook polls GetDepth on a fixed interval and pushes each snapshot
// into the sink until ctx is done.
func (hataExchange *HataExchange) SubscribeBook(ctx context.Context, pair string) (err error) {
	Logger.Info("Starting Hata depth poll loop for pair: " + pair)

	ticker := time.NewTicker(hataExchange.pollInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				Logger.Info("Received interrupt signal. Stopping Hata depth poll loop.")
				return
			case <-ticker.C:
				depth, err := hataExchange.GetDepth(ctx, pair)
				if err != nil {
					Logger.Error("Failed to poll Hata depth: " + err.Error())
					continue
				}
				if err := hataExchange.sink.ApplyVenueDepth(depth); err != nil {
					Logger.Error("Failed to apply Hata depth: " + err.Error())
				}
			}
		}
	}()

	return nil
}
