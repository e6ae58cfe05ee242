package exchange

import (
	"context"

	"consolidated-orderbook/internal/domain"
)

// Exchanger is one venue feeding the consolidated book.
type Exchanger interface {
	GetName() string
	// GetDepth fetches the venue's current depth snapshot for a pair.
	GetDepth(ctx context.Context, pair string) (domain.VenueDepth, error)
	// SubscribeBook starts a streaming (or polling) feed that pushes depth
	// batches into the sink the adapter was constructed with. It returns
	// after the feed is established; delivery continues until ctx is done.
	SubscribeBook(ctx context.Context, pair string) error
}

// DepthSink consumes depth batches from a venue feed. The display service
// implements it.
type DepthSink interface {
	ApplyVenueDepth(depth domain.VenueDepth) error
}
