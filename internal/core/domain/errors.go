package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors for the settlement flow. Handlers wrap these with
// context via fmt.Errorf and %w; the API layer maps them to status
// codes with errors.Is. Message text is what clients see, so the
// rate-limit sentinel carries the generic wording and never the raw
// provider error.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrNotConfigured       = errors.New("pool not configured")
	ErrPaymentNotConfirmed = errors.New("SOL transaction not confirmed")
	ErrRateLimited         = errors.New("service temporarily rate limited, please try again later")
	ErrUnexpectedResponse  = errors.New("unexpected response from wallet provider")
	ErrQuoteUnavailable    = errors.New("failed to fetch price")
)

// HTTPStatus maps a settlement error to the status the API reports.
// Client-caused failures are 400s; configuration and everything else
// internal is a 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrPaymentNotConfirmed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
