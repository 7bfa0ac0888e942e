package ledger

import (
	"errors"
	"net/http"
)

// Domain errors for ledger operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("ledger entry already exists")
	ErrZeroAmount   = errors.New("ledger amount must be non-zero")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUserNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrZeroAmount) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
