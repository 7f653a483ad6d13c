package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/queue"
)

const testPrice = int64(500)

func pendingIntent() *entity.PurchaseIntent {
	now := time.Now().UTC()
	return &entity.PurchaseIntent{
		ID:                   "intent-1",
		LeadID:               "lead-1",
		BuyerID:              "buyer-a",
		GatewayTransactionID: "pi_123",
		Status:               entity.IntentStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func settleInput() SettlePurchaseInput {
	return SettlePurchaseInput{
		EventID:              "evt_1",
		GatewayTransactionID: "pi_123",
		LeadID:               "lead-1",
		BuyerID:              "buyer-a",
	}
}

func newSettleUC() (*SettlePurchaseUseCase, *MockLeadRepository, *MockIntentRepository, *MockPaymentRepository, *MockEventRepository, *MockProducer) {
	leads := new(MockLeadRepository)
	intents := new(MockIntentRepository)
	payments := new(MockPaymentRepository)
	events := new(MockEventRepository)
	producer := new(MockProducer)
	uc := NewSettlePurchaseUseCase(leads, intents, payments, events, producer, testPrice)
	return uc, leads, intents, payments, events, producer
}

func TestSettlePurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("commits the winning confirmation", func(t *testing.T) {
		uc, leads, intents, payments, events, producer := newSettleUC()

		events.On("Seen", mock.Anything, "evt_1").Return(false, nil)
		intents.On("FindByGatewayTransactionID", mock.Anything, "pi_123").Return(pendingIntent(), nil)
		leads.On("TransitionToPurchased", mock.Anything, "lead-1", "buyer-a", mock.Anything).Return(nil)
		intents.On("MarkSettled", mock.Anything, "intent-1").Return(nil)
		payments.On("Create", mock.Anything, mock.MatchedBy(func(p *entity.Payment) bool {
			return p.LeadID == "lead-1" && p.BuyerID == "buyer-a" && p.AmountCents == testPrice
		})).Return(nil)
		producer.On("PublishLeadChanged", mock.Anything, mock.Anything).Return(nil)
		events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		outcome, err := uc.Execute(ctx, settleInput())

		assert.NoError(t, err)
		assert.Equal(t, SettleCommitted, outcome)
		leads.AssertExpectations(t)
		intents.AssertExpectations(t)
		payments.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("already processed event id is a no-op", func(t *testing.T) {
		uc, leads, intents, _, events, _ := newSettleUC()

		events.On("Seen", mock.Anything, "evt_1").Return(true, nil)

		outcome, err := uc.Execute(ctx, settleInput())

		assert.NoError(t, err)
		assert.Equal(t, SettleDuplicate, outcome)
		intents.AssertNotCalled(t, "FindByGatewayTransactionID", mock.Anything, mock.Anything)
		leads.AssertNotCalled(t, "TransitionToPurchased", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown transaction is an audited no-op", func(t *testing.T) {
		uc, leads, intents, _, events, _ := newSettleUC()

		events.On("Seen", mock.Anything, "evt_1").Return(false, nil)
		intents.On("FindByGatewayTransactionID", mock.Anything, "pi_123").Return(nil, entity.ErrIntentNotFound)
		events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		outcome, err := uc.Execute(ctx, settleInput())

		assert.NoError(t, err)
		assert.Equal(t, SettleOrphan, outcome)
		leads.AssertNotCalled(t, "TransitionToPurchased", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		events.AssertExpectations(t)
	})

	t.Run("settled intent replay is a no-op", func(t *testing.T) {
		uc, leads, intents, _, events, _ := newSettleUC()

		settled := pendingIntent()
		settled.Status = entity.IntentStatusSettled

		events.On("Seen", mock.Anything, "evt_1").Return(false, nil)
		intents.On("FindByGatewayTransactionID", mock.Anything, "pi_123").Return(settled, nil)
		events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		outcome, err := uc.Execute(ctx, settleInput())

		assert.NoError(t, err)
		assert.Equal(t, SettleDuplicate, outcome)
		leads.AssertNotCalled(t, "TransitionToPurchased", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race marks intent failed and publishes reconciliation", func(t *testing.T) {
		uc, leads, intents, _, events, producer := newSettleUC()

		purchasedAt := time.Now().UTC()
		takenLead := &entity.Lead{
			ID:          "lead-1",
			Status:      entity.LeadStatusPurchased,
			PurchasedBy: "buyer-b",
			PurchasedAt: &purchasedAt,
		}

		events.On("Seen", mock.Anything, "evt_1").Return(false, nil)
		intents.On("FindByGatewayTransactionID", mock.Anything, "pi_123").Return(pendingIntent(), nil)
		leads.On("TransitionToPurchased", mock.Anything, "lead-1", "buyer-a", mock.Anything).Return(entity.ErrStatusConflict)
		leads.On("FindByID", mock.Anything, "lead-1").Return(takenLead, nil)
		intents.On("MarkFailed", mock.Anything, "intent-1").Return(nil)
		producer.On("PublishReconciliation", mock.Anything, mock.MatchedBy(func(p queue.ReconciliationPayload) bool {
			return p.LeadID == "lead-1" && p.BuyerID == "buyer-a" &&
				p.GatewayTransactionID == "pi_123" && p.AmountCents == testPrice
		})).Return(nil)
		events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		outcome, err := uc.Execute(ctx, settleInput())

		assert.NoError(t, err)
		assert.Equal(t, SettleConflict, outcome)
		intents.AssertNotCalled(t, "MarkSettled", mock.Anything, mock.Anything)
		producer.AssertExpectations(t)
	})

	t.Run("concurrent replay by the winning buyer settles quietly", func(t *testing.T) {
		uc, leads, intents, _, events, producer := newSettleUC()

		purchasedAt := time.Now().UTC()
		ownLead := &entity.Lead{
			ID:          "lead-1",
			Status:      entity.LeadStatusPurchased,
			PurchasedBy: "buyer-a",
			PurchasedAt: &purchasedAt,
		}

		events.On("Seen", mock.Anything, "evt_1").Return(false, nil)
		intents.On("FindByGatewayTransactionID", mock.Anything, "pi_123").Return(pendingIntent(), nil)
		leads.On("TransitionToPurchased", mock.Anything, "lead-1", "buyer-a", mock.Anything).Return(entity.ErrStatusConflict)
		leads.On("FindByID", mock.Anything, "lead-1").Return(ownLead, nil)
		intents.On("MarkSettled", mock.Anything, "intent-1").Return(nil)
		events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		outcome, err := uc.Execute(ctx, settleInput())

		assert.NoError(t, err)
		assert.Equal(t, SettleDuplicate, outcome)
		intents.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything)
		producer.AssertNotCalled(t, "PublishReconciliation", mock.Anything, mock.Anything)
	})

	t.Run("reconciliation publish failure forces a gateway retry", func(t *testing.T) {
		uc, leads, intents, _, events, producer := newSettleUC()

		purchasedAt := time.Now().UTC()
		takenLead := &entity.Lead{
			ID:          "lead-1",
			Status:      entity.LeadStatusPurchased,
			PurchasedBy: "buyer-b",
			PurchasedAt: &purchasedAt,
		}

		events.On("Seen", mock.Anything, "evt_1").Return(false, nil)
		intents.On("FindByGatewayTransactionID", mock.Anything, "pi_123").Return(pendingIntent(), nil)
		leads.On("TransitionToPurchased", mock.Anything, "lead-1", "buyer-a", mock.Anything).Return(entity.ErrStatusConflict)
		leads.On("FindByID", mock.Anything, "lead-1").Return(takenLead, nil)
		intents.On("MarkFailed", mock.Anything, "intent-1").Return(nil)
		producer.On("PublishReconciliation", mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := uc.Execute(ctx, settleInput())

		assert.Error(t, err)
		assert.True(t, IsTechnicalError(err))
		events.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
	})

	t.Run("expired intent still goes through arbitration", func(t *testing.T) {
		uc, leads, intents, payments, events, producer := newSettleUC()

		expired := pendingIntent()
		expired.Status = entity.IntentStatusExpired

		events.On("Seen", mock.Anything, "evt_1").Return(false, nil)
		intents.On("FindByGatewayTransactionID", mock.Anything, "pi_123").Return(expired, nil)
		leads.On("TransitionToPurchased", mock.Anything, "lead-1", "buyer-a", mock.Anything).Return(nil)
		intents.On("MarkSettled", mock.Anything, "intent-1").Return(nil)
		payments.On("Create", mock.Anything, mock.Anything).Return(nil)
		producer.On("PublishLeadChanged", mock.Anything, mock.Anything).Return(nil)
		events.On("MarkProcessed", mock.Anything, "evt_1").Return(nil)

		outcome, err := uc.Execute(ctx, settleInput())

		assert.NoError(t, err)
		assert.Equal(t, SettleCommitted, outcome)
	})
}
