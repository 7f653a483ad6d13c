package usecase

import "errors"

// Domain error codes. Callers branch on these to pick user messaging,
// retries or alerting; a generic 500 is reserved for TechnicalError.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
	CodeLeadUnavailable  = "LEAD_UNAVAILABLE"
	CodeAlreadyPurchased = "ALREADY_PURCHASED"
	CodeNotOwner         = "NOT_OWNER"
	CodeInvalidState     = "INVALID_STATE"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// DomainCode returns the code of a DomainError, or "" for anything else.
func DomainCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}
