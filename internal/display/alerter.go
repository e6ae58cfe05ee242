package display

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/webhook"

	"consolidated-orderbook/internal/domain"
)

// Alerter posts a Discord notification when a redisplay pass shows
// market-order (auction) pricing, so operators know the displayed best
// prices are indeterminate.
type Alerter struct {
	webhookURL string
	cooldown   time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

func NewAlerter(webhookURL string, cooldown time.Duration) *Alerter {
	return &Alerter{webhookURL: webhookURL, cooldown: cooldown}
}

func (a *Alerter) AlertMarketPricing(rows []domain.DisplayRow) {
	if a.webhookURL == "" || len(rows) == 0 {
		return
	}

	a.mu.Lock()
	if time.Since(a.lastSent) < a.cooldown {
		a.mu.Unlock()
		return
	}
	a.lastSent = time.Now()
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := webhook.NewWithURL(a.webhookURL)
	if err != nil {
		Logger.Error("Failed to create discord session: " + err.Error())
		return
	}
	defer client.Close(ctx)

	builder := discord.NewEmbedBuilder().
		SetTitle("Market-order pricing on the consolidated display").
		SetColor(0xffa500)

	// Discord caps embeds at 25 fields; three per row.
	limit := len(rows)
	if limit > 8 {
		limit = 8
	}
	for _, row := range rows[:limit] {
		builder.
			AddField("Side / Row", row.Side.String()+" #"+quantityText(int64(row.Row)), true).
			AddField("Price", row.Price, true).
			AddField("Qty / VBBO", quantityText(row.Quantity)+" / "+row.Vbbo, true)
	}

	_, err = client.CreateEmbeds([]discord.Embed{builder.Build()})
	if err != nil {
		Logger.Error("Failed to send message to discord: " + err.Error())
	}
}
