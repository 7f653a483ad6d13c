package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/quiprentals/lead-market/internal/infra/http/middleware"
	"github.com/quiprentals/lead-market/internal/infra/integration/stripe"
	"github.com/quiprentals/lead-market/internal/usecase"
)

const maxWebhookBody = 1 << 16 // 64 KiB, gateway events are small

// SettlePurchaseExecutor lets tests swap the settlement use case.
type SettlePurchaseExecutor interface {
	Execute(ctx context.Context, input usecase.SettlePurchaseInput) (usecase.SettleOutcome, error)
}

type WebhookHandler struct {
	SettleUC      SettlePurchaseExecutor
	WebhookSecret string
}

func NewWebhookHandler(settleUC SettlePurchaseExecutor, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		SettleUC:      settleUC,
		WebhookSecret: webhookSecret,
	}
}

// Handle processes one gateway delivery. 200 means durably
// processed-or-deduplicated (the gateway stops retrying), 400 rejects a bad
// signature, 500 asks for a redelivery — the settlement path is idempotent,
// so re-invocation is always safe.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if err := stripe.VerifySignature(body, sig, h.WebhookSecret, stripe.DefaultTolerance); err != nil {
		log.Printf("❌ webhook signature rejected: %v", err)
		middleware.RecordWebhookEvent("signature_rejected")
		http.Error(w, "invalid_signature", http.StatusBadRequest)
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "bad JSON", http.StatusBadRequest)
		return
	}

	if event.Type != stripe.EventPaymentIntentSucceeded {
		// Not ours to handle; ack so the gateway stops redelivering.
		w.WriteHeader(http.StatusOK)
		return
	}

	outcome, err := h.SettleUC.Execute(r.Context(), usecase.SettlePurchaseInput{
		EventID:              event.ID,
		GatewayTransactionID: event.Data.Object.ID,
		LeadID:               event.Data.Object.Metadata["lead_id"],
		BuyerID:              event.Data.Object.Metadata["buyer_id"],
	})
	if err != nil {
		log.Printf("❌ webhook %s processing failed, gateway will retry: %v", event.ID, err)
		middleware.RecordWebhookEvent("transient_error")
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	middleware.RecordWebhookEvent(string(outcome))
	switch outcome {
	case usecase.SettleCommitted:
		middleware.RecordLeadSold()
	case usecase.SettleConflict:
		middleware.RecordReconciliationRequired()
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true", "outcome": string(outcome)})
}
