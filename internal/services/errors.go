package services

import (
	"errors"
	"fmt"
	"strings"
)

// Common service errors
var (
	ErrNotFound            = errors.New("enregistrement introuvable")
	ErrUnauthorized        = errors.New("non autorisé")
	ErrExternalUnavailable = errors.New("base externe indisponible")
)

// ValidationError carries per-field validation messages; it maps to a 422.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// ConflictError signals that a request contradicts the current state of the
// aggregate (illegal transition, overpayment, closed period, duplicate
// décaissement...). It maps to a 409 with the details in the body.
type ConflictError struct {
	Reason        string
	StatutActuel  string   `json:"statut_actuel,omitempty"`
	StatutDemande string   `json:"statut_demande,omitempty"`
	ResteAPayer   *float64 `json:"reste_a_payer,omitempty"`
}

func (e *ConflictError) Error() string {
	return e.Reason
}
