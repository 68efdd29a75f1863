package submit

import (
	"fmt"
	"time"
)

// Policy defines retry behavior for one submission call. It is fixed
// for the lifetime of a Submitter.
type Policy struct {
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	Attempts: 3,
	Backoff:  1 * time.Second,
	Timeout:  30 * time.Second,
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	if p.Attempts < 1 {
		return fmt.Errorf("attempts must be >= 1, got %d", p.Attempts)
	}
	if p.Backoff < 0 {
		return fmt.Errorf("backoff must be >= 0, got %s", p.Backoff)
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", p.Timeout)
	}
	return nil
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	if p.Attempts == 0 {
		p.Attempts = DefaultPolicy.Attempts
	}
	if p.Backoff == 0 {
		p.Backoff = DefaultPolicy.Backoff
	}
	if p.Timeout == 0 {
		p.Timeout = DefaultPolicy.Timeout
	}
	return p
}
