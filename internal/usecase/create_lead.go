package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/queue"
)

type CreateLeadUseCase struct {
	Leads entity.LeadRepositoryInterface
	Queue QueueProducerInterface
}

func NewCreateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	producer QueueProducerInterface,
) *CreateLeadUseCase {
	return &CreateLeadUseCase{
		Leads: leads,
		Queue: producer,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput) (*SubmitLeadOutput, error) {
	validationErrors := ValidateSubmitLeadInput(input)
	if len(validationErrors) > 0 {
		errMsg := "validation failed: "
		for _, e := range validationErrors {
			errMsg += e.Field + " (" + e.Message + "), "
		}
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: errMsg,
		}
	}

	now := time.Now().UTC()
	lead := &entity.Lead{
		ID:             uuid.New().String(),
		Category:       input.Category,
		EquipmentTypes: input.EquipmentTypes,
		RentalDuration: input.RentalDuration,
		StartDate:      input.StartDate,
		Budget:         input.Budget,
		Street:         input.Street,
		City:           input.City,
		ZipCode:        input.ZipCode,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Details:        input.Details,
		Status:         entity.LeadStatusNew,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to persist lead: " + err.Error(),
		}
	}

	// Change notification is best-effort: the lead is durable either way.
	if uc.Queue != nil {
		if err := uc.Queue.PublishLeadChanged(ctx, queue.LeadChangedPayload{
			LeadID:    lead.ID,
			Change:    queue.LeadCreated,
			Status:    lead.Status,
			ChangedAt: now,
		}); err != nil {
			log.Printf("⚠️ lead %s created but change event not published: %v", lead.ID, err)
		}
	}

	return &SubmitLeadOutput{
		ID:        lead.ID,
		Status:    lead.Status,
		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}, nil
}
