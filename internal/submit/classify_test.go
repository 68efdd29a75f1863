package submit

import (
	"errors"
	"testing"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		err    error
		expect bool
	}{
		{errors.New("429 Too Many Requests"), true},
		{errors.New("server responded with 429"), true},
		{errors.New("Rate Limit exceeded"), true},
		{errors.New("too many requests, slow down"), true},
		{errors.New("request throttled by provider"), true},
		{errors.New("THROTTLE: retry later"), true},
		{errors.New("insufficient funds for transfer"), false},
		{errors.New("invalid instruction data"), false},
		{errors.New("submission attempt timed out after 30s"), false},
		{errors.New("connection reset by peer"), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsRateLimited(tt.err); got != tt.expect {
			t.Errorf("IsRateLimited(%v) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}
