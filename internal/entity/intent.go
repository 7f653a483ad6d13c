package entity

import (
	"context"
	"errors"
	"time"
)

const (
	IntentStatusPending = "PENDING"
	IntentStatusSettled = "SETTLED"
	IntentStatusFailed  = "FAILED"
	IntentStatusExpired = "EXPIRED"
)

var (
	ErrIntentNotFound = errors.New("purchase intent not found")

	// ErrPendingIntentExists is returned when another pending intent already
	// holds the lead (partial unique index on lead_id WHERE status='PENDING').
	ErrPendingIntentExists = errors.New("pending intent already exists for lead")
)

// PurchaseIntent correlates a (lead, buyer) pair with a gateway payment
// intent. It is the single source of truth for in-flight purchases and is
// never exposed to clients beyond the gateway transaction id.
type PurchaseIntent struct {
	ID                   string    `json:"id"`
	LeadID               string    `json:"lead_id"`
	BuyerID              string    `json:"buyer_id"`
	GatewayTransactionID string    `json:"gateway_transaction_id"`
	Status               string    `json:"status"` // PENDING, SETTLED, FAILED, EXPIRED
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (i *PurchaseIntent) IsPending() bool {
	return i.Status == IntentStatusPending
}

// Settleable reports whether a confirmation may still try to win the lead.
// Expired intents stay settleable: a late-paying buyer either still wins a
// New lead or hits the same reconciliation path as a lost race.
func (i *PurchaseIntent) Settleable() bool {
	return i.Status == IntentStatusPending || i.Status == IntentStatusExpired
}

type PurchaseIntentRepositoryInterface interface {
	// CreatePending inserts a new pending intent. Returns
	// ErrPendingIntentExists if the lead is already reserved.
	CreatePending(ctx context.Context, intent *PurchaseIntent) error

	FindPendingByLeadID(ctx context.Context, leadID string) (*PurchaseIntent, error)
	FindByGatewayTransactionID(ctx context.Context, txnID string) (*PurchaseIntent, error)

	// MarkSettled/MarkFailed are conditional on the intent still being
	// settleable; ErrStatusConflict otherwise.
	MarkSettled(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}
