package entity

import (
	"context"
	"time"
)

// Payment is the append-only audit record written once per settled purchase.
type Payment struct {
	ID                   string    `json:"id"`
	LeadID               string    `json:"lead_id"`
	BuyerID              string    `json:"buyer_id"`
	AmountCents          int64     `json:"amount_cents"`
	Status               string    `json:"status"`
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	CreatedAt            time.Time `json:"created_at"`
}

type PaymentRepositoryInterface interface {
	Create(ctx context.Context, p *Payment) error
}

// ProcessedEventRepositoryInterface deduplicates gateway webhook deliveries
// by event id.
type ProcessedEventRepositoryInterface interface {
	Seen(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed records the event id. Recording an id twice is not an
	// error (concurrent deliveries of the same event both settle for it).
	MarkProcessed(ctx context.Context, eventID string) error
}
