package http

import (
	"errors"

	"gccp-api/internal/usecase/contract"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// ToFieldErrors flattens a *contract.ValidationError into field/message
// pairs ordered by field. Any other error becomes a single "_" entry.
func ToFieldErrors(err error) []FieldError {
	var verr *contract.ValidationError
	if !errors.As(err, &verr) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verr.Fields))
	for _, field := range verr.Keys() {
		for _, msg := range verr.Fields[field] {
			out = append(out, FieldError{Field: field, Message: msg})
		}
	}
	return out
}
