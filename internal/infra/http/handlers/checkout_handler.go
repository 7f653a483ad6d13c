package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quiprentals/lead-market/internal/infra/http/middleware"
	"github.com/quiprentals/lead-market/internal/usecase"
)

type CheckoutHandler struct {
	InitiatePurchaseUC *usecase.InitiatePurchaseUseCase
}

func NewCheckoutHandler(uc *usecase.InitiatePurchaseUseCase) *CheckoutHandler {
	return &CheckoutHandler{InitiatePurchaseUC: uc}
}

// Handle starts a lead purchase: reserves the lead with a pending intent and
// hands the client the gateway token to pay with.
func (h *CheckoutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.ViewerFrom(r.Context())
	if buyer.IsAnonymous() {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		return
	}

	var input usecase.InitiatePurchaseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if input.LeadID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lead_id is required"})
		return
	}
	input.BuyerID = buyer.ID

	output, err := h.InitiatePurchaseUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
