package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/integration/stripe"
)

func newLead(status string) *entity.Lead {
	now := time.Now().UTC()
	return &entity.Lead{
		ID:        "lead-1",
		Category:  "construction",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newInitiateUC() (*InitiatePurchaseUseCase, *MockLeadRepository, *MockIntentRepository, *MockGateway) {
	leads := new(MockLeadRepository)
	intents := new(MockIntentRepository)
	gateway := new(MockGateway)
	uc := NewInitiatePurchaseUseCase(leads, intents, gateway, testPrice)
	return uc, leads, intents, gateway
}

func TestInitiatePurchase(t *testing.T) {
	ctx := context.Background()
	input := InitiatePurchaseInput{LeadID: "lead-1", BuyerID: "buyer-a"}

	t.Run("creates a gateway intent and a pending record", func(t *testing.T) {
		uc, leads, intents, gateway := newInitiateUC()

		leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.LeadStatusNew), nil)
		intents.On("FindPendingByLeadID", mock.Anything, "lead-1").Return(nil, entity.ErrIntentNotFound)
		gateway.On("CreateIntent", mock.Anything, stripe.CreateIntentInput{
			AmountCents: testPrice, LeadID: "lead-1", BuyerID: "buyer-a",
		}).Return(&stripe.IntentOutput{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)
		intents.On("CreatePending", mock.Anything, mock.MatchedBy(func(i *entity.PurchaseIntent) bool {
			return i.LeadID == "lead-1" && i.BuyerID == "buyer-a" &&
				i.GatewayTransactionID == "pi_123" && i.Status == entity.IntentStatusPending
		})).Return(nil)

		out, err := uc.Execute(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, "pi_123", out.IntentID)
		assert.Equal(t, "pi_123_secret", out.ClientSecret)
		assert.Equal(t, testPrice, out.AmountCents)
		gateway.AssertExpectations(t)
		intents.AssertExpectations(t)
	})

	t.Run("unknown lead", func(t *testing.T) {
		uc, leads, _, gateway := newInitiateUC()

		leads.On("FindByID", mock.Anything, "lead-1").Return(nil, entity.ErrLeadNotFound)

		_, err := uc.Execute(ctx, input)

		assert.Equal(t, CodeLeadNotFound, DomainCode(err))
		gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
	})

	t.Run("purchased lead is unavailable", func(t *testing.T) {
		uc, leads, _, gateway := newInitiateUC()

		lead := newLead(entity.LeadStatusPurchased)
		lead.PurchasedBy = "buyer-b"
		leads.On("FindByID", mock.Anything, "lead-1").Return(lead, nil)

		_, err := uc.Execute(ctx, input)

		assert.Equal(t, CodeLeadUnavailable, DomainCode(err))
		gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
	})

	t.Run("same buyer reuses the pending token", func(t *testing.T) {
		uc, leads, intents, gateway := newInitiateUC()

		leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.LeadStatusNew), nil)
		intents.On("FindPendingByLeadID", mock.Anything, "lead-1").Return(&entity.PurchaseIntent{
			ID: "intent-1", LeadID: "lead-1", BuyerID: "buyer-a",
			GatewayTransactionID: "pi_old", Status: entity.IntentStatusPending,
		}, nil)
		gateway.On("GetIntent", mock.Anything, "pi_old").
			Return(&stripe.IntentOutput{ID: "pi_old", ClientSecret: "pi_old_secret"}, nil)

		out, err := uc.Execute(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, "pi_old", out.IntentID)
		gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
		intents.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
	})

	t.Run("lead reserved by another buyer", func(t *testing.T) {
		uc, leads, intents, gateway := newInitiateUC()

		leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.LeadStatusNew), nil)
		intents.On("FindPendingByLeadID", mock.Anything, "lead-1").Return(&entity.PurchaseIntent{
			ID: "intent-2", LeadID: "lead-1", BuyerID: "buyer-b",
			GatewayTransactionID: "pi_other", Status: entity.IntentStatusPending,
		}, nil)

		_, err := uc.Execute(ctx, input)

		assert.Equal(t, CodeLeadUnavailable, DomainCode(err))
		gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
	})

	t.Run("lost initiate race cancels the gateway intent", func(t *testing.T) {
		uc, leads, intents, gateway := newInitiateUC()

		leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.LeadStatusNew), nil)
		// Free when checked, taken by the time the insert lands.
		intents.On("FindPendingByLeadID", mock.Anything, "lead-1").Return(nil, entity.ErrIntentNotFound).Once()
		gateway.On("CreateIntent", mock.Anything, mock.Anything).
			Return(&stripe.IntentOutput{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil)
		intents.On("CreatePending", mock.Anything, mock.Anything).Return(entity.ErrPendingIntentExists)
		gateway.On("CancelIntent", mock.Anything, "pi_123").Return(nil)
		intents.On("FindPendingByLeadID", mock.Anything, "lead-1").Return(&entity.PurchaseIntent{
			ID: "intent-2", LeadID: "lead-1", BuyerID: "buyer-b",
			GatewayTransactionID: "pi_other", Status: entity.IntentStatusPending,
		}, nil).Once()

		_, err := uc.Execute(ctx, input)

		assert.Equal(t, CodeLeadUnavailable, DomainCode(err))
		gateway.AssertCalled(t, "CancelIntent", mock.Anything, "pi_123")
	})

	t.Run("gateway failure is technical", func(t *testing.T) {
		uc, leads, intents, gateway := newInitiateUC()

		leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.LeadStatusNew), nil)
		intents.On("FindPendingByLeadID", mock.Anything, "lead-1").Return(nil, entity.ErrIntentNotFound)
		gateway.On("CreateIntent", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		_, err := uc.Execute(ctx, input)

		assert.True(t, IsTechnicalError(err))
		intents.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything)
	})
}
