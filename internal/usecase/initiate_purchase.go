package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/integration/stripe"
)

// InitiatePurchaseUseCase reserves a lead for a buyer by creating a pending
// purchase intent tied to a gateway payment intent. Concurrent initiates for
// the same lead are arbitrated by the store's unique pending-intent
// constraint, never by in-process state.
type InitiatePurchaseUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Intents    entity.PurchaseIntentRepositoryInterface
	Gateway    PaymentGateway
	PriceCents int64
}

func NewInitiatePurchaseUseCase(
	leads entity.LeadRepositoryInterface,
	intents entity.PurchaseIntentRepositoryInterface,
	gateway PaymentGateway,
	priceCents int64,
) *InitiatePurchaseUseCase {
	return &InitiatePurchaseUseCase{
		Leads:      leads,
		Intents:    intents,
		Gateway:    gateway,
		PriceCents: priceCents,
	}
}

func (uc *InitiatePurchaseUseCase) Execute(ctx context.Context, input InitiatePurchaseInput) (*InitiatePurchaseOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &DomainError{Code: CodeLeadNotFound, Message: "lead does not exist"}
	}
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	if !lead.IsNew() {
		return nil, &DomainError{
			Code:    CodeLeadUnavailable,
			Message: "lead is no longer available",
		}
	}

	// A pending intent held by the same buyer is reused so UI retries don't
	// orphan gateway-side payment intents.
	if out, err := uc.reusePending(ctx, input); out != nil || err != nil {
		return out, err
	}

	// The gateway intent must not outlive a failed local write, so the two
	// steps run as a compensated transaction.
	var created *stripe.IntentOutput

	txn := NewTransaction()
	txn.AddOperation("create_gateway_intent", func(ctx context.Context) error {
		out, err := uc.Gateway.CreateIntent(ctx, stripe.CreateIntentInput{
			AmountCents: uc.PriceCents,
			LeadID:      input.LeadID,
			BuyerID:     input.BuyerID,
		})
		if err != nil {
			return err
		}
		created = out
		return nil
	})
	txn.AddCompensation("cancel_gateway_intent", func(ctx context.Context) error {
		return uc.Gateway.CancelIntent(ctx, created.ID)
	})
	txn.AddOperation("persist_purchase_intent", func(ctx context.Context) error {
		now := time.Now().UTC()
		return uc.Intents.CreatePending(ctx, &entity.PurchaseIntent{
			ID:                   uuid.New().String(),
			LeadID:               input.LeadID,
			BuyerID:              input.BuyerID,
			GatewayTransactionID: created.ID,
			Status:               entity.IntentStatusPending,
			CreatedAt:            now,
			UpdatedAt:            now,
		})
	})

	if err := txn.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrPendingIntentExists) {
			// Lost the initiate race. The winner may still be this buyer on a
			// double-click, in which case its token is reused.
			if out, reuseErr := uc.reusePending(ctx, input); out != nil || reuseErr != nil {
				return out, reuseErr
			}
			return nil, &DomainError{
				Code:    CodeLeadUnavailable,
				Message: "lead is reserved by another buyer",
			}
		}
		return nil, &TechnicalError{
			Code:    "INITIATE_FAILED",
			Message: "failed to initiate purchase: " + err.Error(),
		}
	}

	log.Printf("💳 purchase initiated: lead=%s buyer=%s intent=%s", input.LeadID, input.BuyerID, created.ID)

	return &InitiatePurchaseOutput{
		IntentID:     created.ID,
		ClientSecret: created.ClientSecret,
		AmountCents:  uc.PriceCents,
	}, nil
}

// reusePending returns the existing token when the caller already holds the
// pending intent, a LeadUnavailable error when another buyer holds it, and
// (nil, nil) when the lead is free.
func (uc *InitiatePurchaseUseCase) reusePending(ctx context.Context, input InitiatePurchaseInput) (*InitiatePurchaseOutput, error) {
	pending, err := uc.Intents.FindPendingByLeadID(ctx, input.LeadID)
	if errors.Is(err, entity.ErrIntentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if pending.BuyerID != input.BuyerID {
		return nil, &DomainError{
			Code:    CodeLeadUnavailable,
			Message: "lead is reserved by another buyer",
		}
	}

	existing, err := uc.Gateway.GetIntent(ctx, pending.GatewayTransactionID)
	if err != nil {
		return nil, &TechnicalError{
			Code:    "GATEWAY_ERROR",
			Message: "failed to load existing payment intent: " + err.Error(),
		}
	}

	log.Printf("♻️ reusing pending intent %s for lead=%s buyer=%s", pending.GatewayTransactionID, input.LeadID, input.BuyerID)

	return &InitiatePurchaseOutput{
		IntentID:     existing.ID,
		ClientSecret: existing.ClientSecret,
		AmountCents:  uc.PriceCents,
	}, nil
}
