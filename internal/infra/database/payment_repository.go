package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quiprentals/lead-market/internal/entity"
)

// PaymentRepository writes the append-only purchase audit trail.
type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (
			id, lead_id, buyer_id, amount_cents, status, gateway_transaction_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.LeadID,
		p.BuyerID,
		p.AmountCents,
		p.Status,
		p.GatewayTransactionID,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}
