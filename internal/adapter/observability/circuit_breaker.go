package observability

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitBreakerState is the externally visible breaker state.
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	// StateHalfOpen admits a single trial call.
	StateHalfOpen
)

var stateNames = map[CircuitBreakerState]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s CircuitBreakerState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// ErrCircuitOpen is returned by Call while the breaker rejects requests.
var ErrCircuitOpen = errors.New("circuit open")

// CircuitBreaker guards one upstream. It opens after threshold consecutive
// counted failures, stays open for cooldown, then lets one trial call through:
// a successful trial closes it, a failed one reopens it.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu            sync.Mutex
	state         CircuitBreakerState
	streak        int
	openedAt      time.Time
	trialInFlight bool
}

// NewCircuitBreaker returns a closed breaker. threshold <= 0 means 5.
func NewCircuitBreaker(name string, threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	return &CircuitBreaker{name: name, threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Call runs fn unless the breaker rejects it. countable reports which errors
// count against the upstream; nil counts all of them. fn runs unlocked.
func (cb *CircuitBreaker) Call(fn func() error, countable func(error) bool) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.settle(err != nil && (countable == nil || countable(err)))
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && !cb.now().Before(cb.openedAt.Add(cb.cooldown)) {
		cb.moveTo(StateHalfOpen)
	}
	switch {
	case cb.state == StateOpen:
		return fmt.Errorf("%w: %s", ErrCircuitOpen, cb.name)
	case cb.state == StateHalfOpen && cb.trialInFlight:
		return fmt.Errorf("%w: %s trial call in flight", ErrCircuitOpen, cb.name)
	case cb.state == StateHalfOpen:
		cb.trialInFlight = true
	}
	return nil
}

func (cb *CircuitBreaker) settle(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	wasTrial := cb.state == StateHalfOpen
	cb.trialInFlight = false
	if !failed {
		cb.streak = 0
		if wasTrial {
			cb.moveTo(StateClosed)
		}
		return
	}
	cb.streak++
	if wasTrial || cb.streak >= cb.threshold {
		cb.openedAt = cb.now()
		cb.moveTo(StateOpen)
	}
}

// moveTo requires cb.mu.
func (cb *CircuitBreaker) moveTo(s CircuitBreakerState) {
	cb.state = s
	recordBreakerState(cb.name, s)
}

// State returns the current state without advancing an expired cooldown.
func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
