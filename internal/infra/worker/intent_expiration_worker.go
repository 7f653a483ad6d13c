package worker

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// IntentExpirationWorker flags abandoned pending purchase intents so their
// leads become purchasable again. Expiry is a soft state: a late payment
// confirmation for an expired intent still goes through the normal
// settlement arbitration, it never gets silently discarded.
type IntentExpirationWorker struct {
	db               *sql.DB
	expirationWindow time.Duration
	tickInterval     time.Duration
}

func NewIntentExpirationWorker(db *sql.DB, window time.Duration) *IntentExpirationWorker {
	if window <= 0 {
		window = 30 * time.Minute
	}
	return &IntentExpirationWorker{
		db:               db,
		expirationWindow: window,
		tickInterval:     1 * time.Minute,
	}
}

func (w *IntentExpirationWorker) Start(ctx context.Context) {
	log.Printf("🕒 intent expiration worker started (%s window)", w.expirationWindow)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.expireOldIntents(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ intent expiration worker stopped")
			return
		case <-ticker.C:
			w.expireOldIntents(ctx)
		}
	}
}

func (w *IntentExpirationWorker) expireOldIntents(ctx context.Context) {
	// The status guard makes this safe against racing confirmations: an
	// intent that settles between the read and the write is not PENDING
	// anymore and stays untouched.
	query := `
		UPDATE purchase_intents
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'PENDING'
		  AND created_at < NOW() - ($1 * INTERVAL '1 second')
		RETURNING id, lead_id, buyer_id, created_at
	`

	rows, err := w.db.QueryContext(ctx, query, int64(w.expirationWindow.Seconds()))
	if err != nil {
		log.Printf("❌ failed to expire stale intents: %v", err)
		return
	}
	defer rows.Close()

	expiredCount := 0
	for rows.Next() {
		var intentID, leadID, buyerID string
		var createdAt time.Time

		if err := rows.Scan(&intentID, &leadID, &buyerID, &createdAt); err != nil {
			log.Printf("⚠️ failed to scan expired intent: %v", err)
			continue
		}

		elapsed := time.Since(createdAt)
		log.Printf("⏱️ intent expired: intent=%s lead=%s buyer=%s elapsed=%s",
			intentID, leadID, buyerID, elapsed.Round(time.Minute))
		expiredCount++
	}

	if expiredCount > 0 {
		log.Printf("✅ %d intent(s) marked EXPIRED", expiredCount)
	}
}
