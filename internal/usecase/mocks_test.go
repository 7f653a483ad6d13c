package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/integration/stripe"
	"github.com/quiprentals/lead-market/internal/infra/queue"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if lead, ok := args.Get(0).(*entity.Lead); ok {
		return lead, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) ListForViewer(ctx context.Context, viewer entity.Account) ([]*entity.Lead, error) {
	args := m.Called(ctx, viewer)
	if leads, ok := args.Get(0).([]*entity.Lead); ok {
		return leads, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeadRepository) TransitionToPurchased(ctx context.Context, leadID, buyerID string, at time.Time) error {
	args := m.Called(ctx, leadID, buyerID, at)
	return args.Error(0)
}

func (m *MockLeadRepository) SetPipelineStatus(ctx context.Context, leadID, buyerID string, admin bool, label string) error {
	args := m.Called(ctx, leadID, buyerID, admin, label)
	return args.Error(0)
}

type MockIntentRepository struct {
	mock.Mock
}

func (m *MockIntentRepository) CreatePending(ctx context.Context, intent *entity.PurchaseIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentRepository) FindPendingByLeadID(ctx context.Context, leadID string) (*entity.PurchaseIntent, error) {
	args := m.Called(ctx, leadID)
	if intent, ok := args.Get(0).(*entity.PurchaseIntent); ok {
		return intent, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIntentRepository) FindByGatewayTransactionID(ctx context.Context, txnID string) (*entity.PurchaseIntent, error) {
	args := m.Called(ctx, txnID)
	if intent, ok := args.Get(0).(*entity.PurchaseIntent); ok {
		return intent, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIntentRepository) MarkSettled(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIntentRepository) MarkFailed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Seen(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishReconciliation(ctx context.Context, payload queue.ReconciliationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockProducer) PublishLeadChanged(ctx context.Context, payload queue.LeadChangedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, input stripe.CreateIntentInput) (*stripe.IntentOutput, error) {
	args := m.Called(ctx, input)
	if out, ok := args.Get(0).(*stripe.IntentOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) GetIntent(ctx context.Context, intentID string) (*stripe.IntentOutput, error) {
	args := m.Called(ctx, intentID)
	if out, ok := args.Get(0).(*stripe.IntentOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) CancelIntent(ctx context.Context, intentID string) error {
	args := m.Called(ctx, intentID)
	return args.Error(0)
}
