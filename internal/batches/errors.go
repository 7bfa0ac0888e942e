package batches

import (
	"errors"
	"net/http"
)

// Domain errors for batch operations.
var (
	ErrNotFound           = errors.New("batch not found")
	ErrDuplicate          = errors.New("batch already exists")
	ErrEmptyBatch         = errors.New("batch requires at least one file")
	ErrInvalidMode        = errors.New("invalid processing mode")
	ErrInvalidLanguage    = errors.New("invalid language")
	ErrInsufficientBudget = errors.New("insufficient token budget")
	ErrQueueFull          = errors.New("execution queue full")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInsufficientBudget) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyBatch) || errors.Is(err, ErrInvalidMode) || errors.Is(err, ErrInvalidLanguage) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrQueueFull) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
