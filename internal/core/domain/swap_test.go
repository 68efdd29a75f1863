package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewSwapQuote(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		want   string
	}{
		{"1", "150", "150"},
		{"1.5", "150", "225"},
		{"0.1", "142.37", "14.237"},
		{"2", "0.5", "1"},
		{"0.000000001", "100", "0.0000001"},
	}

	for _, tt := range tests {
		amount := decimal.RequireFromString(tt.amount)
		rate := decimal.RequireFromString(tt.rate)
		q := NewSwapQuote(amount, rate)

		if !q.CounterAmount.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("NewSwapQuote(%s, %s).CounterAmount = %s, want %s",
				tt.amount, tt.rate, q.CounterAmount, tt.want)
		}
		if !q.Rate.Equal(rate) {
			t.Errorf("NewSwapQuote(%s, %s).Rate = %s, want %s", tt.amount, tt.rate, q.Rate, tt.rate)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrInvalidRequest, http.StatusBadRequest},
		{fmt.Errorf("%w: userWallet is required", ErrInvalidRequest), http.StatusBadRequest},
		{ErrPaymentNotConfirmed, http.StatusBadRequest},
		{ErrNotConfigured, http.StatusInternalServerError},
		{ErrQuoteUnavailable, http.StatusInternalServerError},
		{errors.New("broadcast failed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
