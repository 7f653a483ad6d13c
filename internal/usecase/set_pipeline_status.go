package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/quiprentals/lead-market/internal/entity"
	"github.com/quiprentals/lead-market/internal/infra/queue"
)

// Pipeline labels the dashboard offers out of the box. The set is open:
// deployments may accept extra labels, but no ordering is ever enforced
// between them.
var defaultPipelineLabels = []string{
	"Contacted",
	"Meeting Scheduled",
	"Quote Sent",
	"Closed Won",
}

type SetPipelineStatusUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Queue  QueueProducerInterface
	labels map[string]bool
}

func NewSetPipelineStatusUseCase(
	leads entity.LeadRepositoryInterface,
	producer QueueProducerInterface,
	extraLabels ...string,
) *SetPipelineStatusUseCase {
	labels := make(map[string]bool, len(defaultPipelineLabels)+len(extraLabels))
	for _, l := range defaultPipelineLabels {
		labels[l] = true
	}
	for _, l := range extraLabels {
		if strings.TrimSpace(l) != "" {
			labels[l] = true
		}
	}
	return &SetPipelineStatusUseCase{
		Leads:  leads,
		Queue:  producer,
		labels: labels,
	}
}

func (uc *SetPipelineStatusUseCase) Execute(ctx context.Context, leadID string, actor entity.Account, label string) error {
	if !uc.labels[label] {
		return &DomainError{
			Code:    CodeValidation,
			Message: "unknown pipeline status label: " + label,
		}
	}

	err := uc.Leads.SetPipelineStatus(ctx, leadID, actor.ID, actor.IsAdmin(), label)
	if err == nil {
		if uc.Queue != nil {
			if pubErr := uc.Queue.PublishLeadChanged(ctx, queue.LeadChangedPayload{
				LeadID:     leadID,
				Change:     queue.LeadPipelineChanged,
				Status:     entity.LeadStatusPurchased,
				LeadStatus: label,
				ChangedAt:  time.Now().UTC(),
			}); pubErr != nil {
				log.Printf("⚠️ pipeline status for %s updated but change event not published: %v", leadID, pubErr)
			}
		}
		return nil
	}

	if !errors.Is(err, entity.ErrStatusConflict) && !errors.Is(err, entity.ErrLeadNotFound) {
		return &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to update pipeline status: " + err.Error(),
		}
	}

	// The conditional update matched nothing. Re-read to tell the caller why.
	lead, findErr := uc.Leads.FindByID(ctx, leadID)
	switch {
	case errors.Is(findErr, entity.ErrLeadNotFound):
		return &DomainError{Code: CodeLeadNotFound, Message: "lead does not exist"}
	case findErr != nil:
		return &TechnicalError{Code: "DATABASE_ERROR", Message: findErr.Error()}
	case !lead.IsPurchased():
		return &DomainError{
			Code:    CodeInvalidState,
			Message: "pipeline status applies to purchased leads only",
		}
	default:
		return &DomainError{
			Code:    CodeNotOwner,
			Message: "lead is owned by a different buyer",
		}
	}
}
