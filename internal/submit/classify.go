package submit

import (
	"strings"
)

// Rate-limit indicators, matched case-insensitively against the error
// message. Only errors in this class are worth retrying; anything else
// (bad instruction, insufficient funds, timeout) fails the same way on
// every attempt.
var rateLimitTokens = []string{
	"429",
	"rate limit",
	"too many requests",
	"throttle",
}

// IsRateLimited reports whether an error is transient rate limiting.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, token := range rateLimitTokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}
