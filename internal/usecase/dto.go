package usecase

type SubmitLeadInput struct {
	Category       string   `json:"category"`
	EquipmentTypes []string `json:"equipment_types"`
	RentalDuration string   `json:"rental_duration"`
	StartDate      string   `json:"start_date"`
	Budget         string   `json:"budget"`
	Street         string   `json:"street"`
	City           string   `json:"city"`
	ZipCode        string   `json:"zip_code"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Details        string   `json:"details"`
}

type SubmitLeadOutput struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type InitiatePurchaseInput struct {
	LeadID  string `json:"lead_id"`
	BuyerID string `json:"-"`
}

// InitiatePurchaseOutput is the client-usable correlation token: the gateway
// payment-intent id plus the client secret the payment UI needs.
type InitiatePurchaseOutput struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
}

type SettlePurchaseInput struct {
	EventID              string
	GatewayTransactionID string
	LeadID               string
	BuyerID              string
}

// SettleOutcome classifies a processed confirmation. Every outcome is a
// durable 200 towards the gateway; only transient errors are retried.
type SettleOutcome string

const (
	// SettleCommitted: this delivery won the lead transition.
	SettleCommitted SettleOutcome = "COMMITTED"
	// SettleDuplicate: event already processed, or replay of the winning
	// confirmation. No effects applied.
	SettleDuplicate SettleOutcome = "DUPLICATE"
	// SettleOrphan: no intent matches the transaction id (replay after
	// garbage collection). Logged for audit, otherwise a no-op.
	SettleOrphan SettleOutcome = "ORPHAN"
	// SettleConflict: the buyer paid but a different confirmation already won
	// the lead. The intent is marked failed and a reconciliation event is
	// published for refund handling.
	SettleConflict SettleOutcome = "CONFLICT"
)
