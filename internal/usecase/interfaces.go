package usecase

import (
	"context"

	"github.com/quiprentals/lead-market/internal/infra/integration/stripe"
	"github.com/quiprentals/lead-market/internal/infra/queue"
)

type PaymentGateway interface {
	CreateIntent(ctx context.Context, input stripe.CreateIntentInput) (*stripe.IntentOutput, error)
	GetIntent(ctx context.Context, intentID string) (*stripe.IntentOutput, error)
	CancelIntent(ctx context.Context, intentID string) error
}

type QueueProducerInterface interface {
	PublishReconciliation(ctx context.Context, payload queue.ReconciliationPayload) error
	PublishLeadChanged(ctx context.Context, payload queue.LeadChangedPayload) error
}
