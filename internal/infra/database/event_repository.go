package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ProcessedEventRepository deduplicates webhook deliveries by gateway event
// id. Inserts are ON CONFLICT DO NOTHING: two concurrent deliveries of the
// same event may both record it, which is fine — the settlement effects
// themselves are conditional.
type ProcessedEventRepository struct {
	DB *sql.DB
}

func NewProcessedEventRepository(db *sql.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{DB: db}
}

func (r *ProcessedEventRepository) Seen(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	query := `SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1)`
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&seen); err != nil {
		return false, fmt.Errorf("failed to check event %s: %w", eventID, err)
	}
	return seen, nil
}

func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	query := `INSERT INTO processed_events (event_id, processed_at) VALUES ($1, NOW()) ON CONFLICT (event_id) DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to record event %s: %w", eventID, err)
	}
	return nil
}
