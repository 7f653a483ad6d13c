package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/quiprentals/lead-market/internal/entity"
)

type PurchaseIntentRepository struct {
	DB *sql.DB
}

func NewPurchaseIntentRepository(db *sql.DB) *PurchaseIntentRepository {
	return &PurchaseIntentRepository{DB: db}
}

// CreatePending relies on the partial unique index
//
//	CREATE UNIQUE INDEX purchase_intents_pending_lead
//	ON purchase_intents (lead_id) WHERE status = 'PENDING'
//
// so two buyers can never hold the same lead at once.
func (r *PurchaseIntentRepository) CreatePending(ctx context.Context, intent *entity.PurchaseIntent) error {
	query := `
		INSERT INTO purchase_intents (
			id, lead_id, buyer_id, gateway_transaction_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		intent.ID,
		intent.LeadID,
		intent.BuyerID,
		intent.GatewayTransactionID,
		intent.Status,
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrPendingIntentExists
		}
		return fmt.Errorf("failed to create purchase intent: %w", err)
	}
	return nil
}

const intentColumns = `id, lead_id, buyer_id, gateway_transaction_id, status, created_at, updated_at`

func (r *PurchaseIntentRepository) FindPendingByLeadID(ctx context.Context, leadID string) (*entity.PurchaseIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM purchase_intents WHERE lead_id = $1 AND status = $2`
	return r.findOne(ctx, query, leadID, entity.IntentStatusPending)
}

func (r *PurchaseIntentRepository) FindByGatewayTransactionID(ctx context.Context, txnID string) (*entity.PurchaseIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM purchase_intents WHERE gateway_transaction_id = $1`
	return r.findOne(ctx, query, txnID)
}

func (r *PurchaseIntentRepository) MarkSettled(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, entity.IntentStatusSettled)
}

func (r *PurchaseIntentRepository) MarkFailed(ctx context.Context, id string) error {
	return r.markStatus(ctx, id, entity.IntentStatusFailed)
}

// markStatus only moves settleable intents (PENDING or EXPIRED), so
// concurrent confirmations cannot overwrite a terminal outcome.
func (r *PurchaseIntentRepository) markStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE purchase_intents
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ($3, $4)
	`

	res, err := r.DB.ExecContext(ctx, query,
		status, id, entity.IntentStatusPending, entity.IntentStatusExpired)
	if err != nil {
		return fmt.Errorf("failed to mark intent %s %s: %w", id, status, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrStatusConflict
	}
	return nil
}

func (r *PurchaseIntentRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.PurchaseIntent, error) {
	var intent entity.PurchaseIntent
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&intent.ID,
		&intent.LeadID,
		&intent.BuyerID,
		&intent.GatewayTransactionID,
		&intent.Status,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrIntentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase intent: %w", err)
	}
	return &intent, nil
}
