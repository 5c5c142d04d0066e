package requirements

import (
	"errors"
	"net/http"
)

// Domain errors for requirement operations.
var (
	ErrNotFound          = errors.New("requirement not found")
	ErrDuplicate         = errors.New("requirement already exists")
	ErrInvalid           = errors.New("invalid requirement")
	ErrNoEvidence        = errors.New("requirement has no linked evidence")
	ErrEvidenceNotFound  = errors.New("evidence document not found")
	ErrEvidenceDuplicate = errors.New("document already linked to requirement")
)

// MapHTTPStatus maps requirement domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEvidenceNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrEvidenceDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) || errors.Is(err, ErrNoEvidence) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
