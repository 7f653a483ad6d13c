package entity

import (
	"context"
	"errors"
	"time"
)

const (
	LeadStatusNew       = "New"
	LeadStatusPurchased = "Purchased"
)

// Returned by repositories when a conditional update matched no row.
var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrStatusConflict = errors.New("lead status conflict")
)

type Lead struct {
	ID             string   `json:"id"`
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
	Details        string   `json:"details,omitempty"`

	Status      string     `json:"status"` // New, Purchased
	LeadStatus  string     `json:"lead_status,omitempty"`
	PurchasedBy string     `json:"purchased_by,omitempty"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lead) IsNew() bool {
	return l.Status == LeadStatusNew
}

func (l *Lead) IsPurchased() bool {
	return l.Status == LeadStatusPurchased
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)

	// ListForViewer returns the leads the store-side predicate allows for the
	// viewer, newest first. Field masking is applied by the caller.
	ListForViewer(ctx context.Context, viewer Account) ([]*Lead, error)

	// TransitionToPurchased is the single conditional update that arbitrates
	// the purchase race: it only succeeds while status is still New and
	// returns ErrStatusConflict otherwise.
	TransitionToPurchased(ctx context.Context, leadID, buyerID string, at time.Time) error

	// SetPipelineStatus updates the sales-pipeline label, conditional on the
	// lead being Purchased and owned by buyerID (admin bypasses ownership).
	SetPipelineStatus(ctx context.Context, leadID, buyerID string, admin bool, label string) error
}
