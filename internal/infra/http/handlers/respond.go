package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quiprentals/lead-market/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeUseCaseError maps typed use-case failures onto HTTP statuses. Only
// TechnicalError becomes a 500; domain outcomes keep their meaning.
func writeUseCaseError(w http.ResponseWriter, err error) {
	code := usecase.DomainCode(err)

	var status int
	switch code {
	case usecase.CodeValidation:
		status = http.StatusUnprocessableEntity
	case usecase.CodeLeadNotFound:
		status = http.StatusNotFound
	case usecase.CodeLeadUnavailable, usecase.CodeAlreadyPurchased, usecase.CodeInvalidState:
		status = http.StatusConflict
	case usecase.CodeNotOwner:
		status = http.StatusForbidden
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Internal error, please try again",
		})
		return
	}

	writeJSON(w, status, map[string]string{
		"code":  code,
		"error": err.Error(),
	})
}
