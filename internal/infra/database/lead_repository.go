package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/quiprentals/lead-market/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, category, equipment_types, rental_duration, start_date, budget,
	street, city, zip_code, name, email, phone, details,
	status, lead_status, purchased_by, purchased_at, created_at, updated_at
`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, category, equipment_types, rental_duration, start_date, budget,
			street, city, zip_code, name, email, phone, details,
			status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		lead.ID,
		lead.Category,
		pq.Array(lead.EquipmentTypes),
		lead.RentalDuration,
		lead.StartDate,
		lead.Budget,
		lead.Street,
		lead.City,
		lead.ZipCode,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Details,
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead %s: %w", id, err)
	}
	return lead, nil
}

// ListForViewer pushes the store-side visibility predicate: admins see
// everything, buyers see new leads plus their own purchases, anonymous
// viewers see new leads only. Newest first, matching the dashboards.
func (r *LeadRepository) ListForViewer(ctx context.Context, viewer entity.Account) ([]*entity.Lead, error) {
	var (
		rows *sql.Rows
		err  error
	)

	switch {
	case viewer.IsAdmin():
		query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
		rows, err = r.DB.QueryContext(ctx, query)
	case viewer.IsAnonymous():
		query := `SELECT ` + leadColumns + ` FROM leads WHERE status = $1 ORDER BY created_at DESC`
		rows, err = r.DB.QueryContext(ctx, query, entity.LeadStatusNew)
	default:
		query := `
			SELECT ` + leadColumns + `
			FROM leads
			WHERE status = $1 OR purchased_by = $2
			ORDER BY created_at DESC
		`
		rows, err = r.DB.QueryContext(ctx, query, entity.LeadStatusNew, viewer.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// TransitionToPurchased is the atomic conditional update the whole
// settlement protocol leans on: the WHERE clause guarantees at most one
// caller ever flips the status.
func (r *LeadRepository) TransitionToPurchased(ctx context.Context, leadID, buyerID string, at time.Time) error {
	query := `
		UPDATE leads
		SET status = $1, purchased_by = $2, purchased_at = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	res, err := r.DB.ExecContext(ctx, query,
		entity.LeadStatusPurchased, buyerID, at, leadID, entity.LeadStatusNew)
	if err != nil {
		return fmt.Errorf("failed to transition lead %s: %w", leadID, err)
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

func (r *LeadRepository) SetPipelineStatus(ctx context.Context, leadID, buyerID string, admin bool, label string) error {
	query := `
		UPDATE leads
		SET lead_status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND (purchased_by = $4 OR $5)
	`

	res, err := r.DB.ExecContext(ctx, query,
		label, leadID, entity.LeadStatusPurchased, buyerID, admin)
	if err != nil {
		return fmt.Errorf("failed to set pipeline status on lead %s: %w", leadID, err)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var leadStatus, purchasedBy sql.NullString
	var purchasedAt sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.Category,
		pq.Array(&lead.EquipmentTypes),
		&lead.RentalDuration,
		&lead.StartDate,
		&lead.Budget,
		&lead.Street,
		&lead.City,
		&lead.ZipCode,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Details,
		&lead.Status,
		&leadStatus,
		&purchasedBy,
		&purchasedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.LeadStatus = leadStatus.String
	lead.PurchasedBy = purchasedBy.String
	if purchasedAt.Valid {
		t := purchasedAt.Time
		lead.PurchasedAt = &t
	}
	return &lead, nil
}
