package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/queue"
)

// SettlePurchaseUseCase reconciles a gateway confirmation with the lead
// record. Processing is idempotent per event id and commutative across
// deliveries: the lead's conditional status update is the only arbiter, so
// any interleaving of replays and concurrent confirmations converges on the
// same end state.
//
// The event id is recorded after the effects, not before. Every effect is a
// conditional update, so re-processing after a crash is harmless, while
// recording first would let a transient failure swallow the retry.
type SettlePurchaseUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Intents    entity.PurchaseIntentRepositoryInterface
	Payments   entity.PaymentRepositoryInterface
	Events     entity.ProcessedEventRepositoryInterface
	Queue      QueueProducerInterface
	PriceCents int64
}

func NewSettlePurchaseUseCase(
	leads entity.LeadRepositoryInterface,
	intents entity.PurchaseIntentRepositoryInterface,
	payments entity.PaymentRepositoryInterface,
	events entity.ProcessedEventRepositoryInterface,
	producer QueueProducerInterface,
	priceCents int64,
) *SettlePurchaseUseCase {
	return &SettlePurchaseUseCase{
		Leads:      leads,
		Intents:    intents,
		Payments:   payments,
		Events:     events,
		Queue:      producer,
		PriceCents: priceCents,
	}
}

func (uc *SettlePurchaseUseCase) Execute(ctx context.Context, input SettlePurchaseInput) (SettleOutcome, error) {
	seen, err := uc.Events.Seen(ctx, input.EventID)
	if err != nil {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	if seen {
		log.Printf("🔁 event %s already processed, skipping", input.EventID)
		return SettleDuplicate, nil
	}

	intent, err := uc.Intents.FindByGatewayTransactionID(ctx, input.GatewayTransactionID)
	if errors.Is(err, entity.ErrIntentNotFound) {
		// Replay after intent garbage collection. Deliberately a success so
		// the gateway stops retrying, but always audited.
		log.Printf("⚠️ AUDIT: confirmation %s references unknown transaction %s (lead=%s buyer=%s)",
			input.EventID, input.GatewayTransactionID, input.LeadID, input.BuyerID)
		if err := uc.markProcessed(ctx, input.EventID); err != nil {
			return "", err
		}
		return SettleOrphan, nil
	}
	if err != nil {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if intent.LeadID != input.LeadID || intent.BuyerID != input.BuyerID {
		// The intent record is authoritative; webhook metadata is only a hint.
		log.Printf("⚠️ AUDIT: event %s metadata (lead=%s buyer=%s) disagrees with intent %s (lead=%s buyer=%s)",
			input.EventID, input.LeadID, input.BuyerID, intent.ID, intent.LeadID, intent.BuyerID)
	}

	if !intent.Settleable() {
		log.Printf("🔁 intent %s already %s, event %s is a replay", intent.ID, intent.Status, input.EventID)
		if err := uc.markProcessed(ctx, input.EventID); err != nil {
			return "", err
		}
		return SettleDuplicate, nil
	}

	// The arbiter: exactly one confirmation per lead ever gets a row here.
	err = uc.Leads.TransitionToPurchased(ctx, intent.LeadID, intent.BuyerID, time.Now().UTC())
	switch {
	case err == nil:
		return uc.commit(ctx, input, intent)
	case errors.Is(err, entity.ErrStatusConflict), errors.Is(err, entity.ErrLeadNotFound):
		return uc.arbitrateConflict(ctx, input, intent)
	default:
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
}

func (uc *SettlePurchaseUseCase) commit(ctx context.Context, input SettlePurchaseInput, intent *entity.PurchaseIntent) (SettleOutcome, error) {
	if err := uc.settleIntent(ctx, intent.ID); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	if err := uc.Payments.Create(ctx, &entity.Payment{
		ID:                   uuid.New().String(),
		LeadID:               intent.LeadID,
		BuyerID:              intent.BuyerID,
		AmountCents:          uc.PriceCents,
		Status:               "succeeded",
		GatewayTransactionID: intent.GatewayTransactionID,
		CreatedAt:            now,
	}); err != nil {
		log.Printf("⚠️ AUDIT: purchase committed but payment record failed for intent %s: %v", intent.ID, err)
	}

	if uc.Queue != nil {
		if err := uc.Queue.PublishLeadChanged(ctx, queue.LeadChangedPayload{
			LeadID:    intent.LeadID,
			Change:    queue.LeadPurchased,
			Status:    entity.LeadStatusPurchased,
			ChangedAt: now,
		}); err != nil {
			log.Printf("⚠️ lead %s purchased but change event not published: %v", intent.LeadID, err)
		}
	}

	if err := uc.markProcessed(ctx, input.EventID); err != nil {
		return "", err
	}

	log.Printf("✅ lead %s sold to buyer %s (intent=%s event=%s)", intent.LeadID, intent.BuyerID, intent.ID, input.EventID)
	return SettleCommitted, nil
}

// arbitrateConflict decides between a replay of the winning confirmation
// (no-op) and a genuine lost race (paid-but-unfulfilled, refund-worthy).
func (uc *SettlePurchaseUseCase) arbitrateConflict(ctx context.Context, input SettlePurchaseInput, intent *entity.PurchaseIntent) (SettleOutcome, error) {
	lead, err := uc.Leads.FindByID(ctx, intent.LeadID)
	if err != nil && !errors.Is(err, entity.ErrLeadNotFound) {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if lead != nil && lead.IsPurchased() && lead.PurchasedBy == intent.BuyerID {
		// This buyer already owns the lead: a concurrent delivery of the same
		// confirmation won the transition first.
		if err := uc.settleIntent(ctx, intent.ID); err != nil {
			return "", err
		}
		if err := uc.markProcessed(ctx, input.EventID); err != nil {
			return "", err
		}
		return SettleDuplicate, nil
	}

	// A different confirmation won the lead. The buyer was charged and must
	// never silently lose the money: fail the intent and hand it to the
	// reconciliation queue for refund and support follow-up.
	if err := uc.Intents.MarkFailed(ctx, intent.ID); err != nil && !errors.Is(err, entity.ErrStatusConflict) {
		return "", &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if err := uc.Queue.PublishReconciliation(ctx, queue.ReconciliationPayload{
		IntentID:             intent.ID,
		LeadID:               intent.LeadID,
		BuyerID:              intent.BuyerID,
		GatewayTransactionID: intent.GatewayTransactionID,
		AmountCents:          uc.PriceCents,
		Reason:               "lead purchased by another buyer before confirmation",
		OccurredAt:           time.Now().UTC(),
	}); err != nil {
		// Without the reconciliation event the charge would be silently lost,
		// so this delivery must be retried by the gateway.
		return "", &TechnicalError{
			Code:    "QUEUE_ERROR",
			Message: "failed to publish reconciliation event: " + err.Error(),
		}
	}

	if err := uc.markProcessed(ctx, input.EventID); err != nil {
		return "", err
	}

	owner := "unknown"
	if lead != nil {
		owner = lead.PurchasedBy
	}
	log.Printf("❌ settlement conflict: buyer %s paid for lead %s already owned by %s (intent=%s event=%s)",
		intent.BuyerID, intent.LeadID, owner, intent.ID, input.EventID)
	return SettleConflict, nil
}

// settleIntent tolerates a concurrent delivery having settled first.
func (uc *SettlePurchaseUseCase) settleIntent(ctx context.Context, intentID string) error {
	if err := uc.Intents.MarkSettled(ctx, intentID); err != nil && !errors.Is(err, entity.ErrStatusConflict) {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	return nil
}

func (uc *SettlePurchaseUseCase) markProcessed(ctx context.Context, eventID string) error {
	if err := uc.Events.MarkProcessed(ctx, eventID); err != nil {
		return &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	return nil
}
