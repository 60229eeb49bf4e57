// Package circuitbreaker provides a per-resource circuit breaker for
// external service calls (database, registry lookups, directory services).
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the state of the circuit breaker.
type State int

const (
	// StateClosed means the circuit is closed and requests are allowed.
	StateClosed State = iota
	// StateOpen means the circuit is open and requests fail fast.
	StateOpen
	// StateHalfOpen means a single trial request is permitted.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures before opening.
	FailureThreshold int
	// RecoveryTimeout is how long the circuit stays open before permitting
	// a half-open probe.
	RecoveryTimeout time.Duration
	// OnStateChange is an optional callback invoked on transitions.
	OnStateChange func(from, to State)
	// Now overrides the clock; tests only.
	Now func() time.Time
}

// DefaultConfig returns the default breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

// Breaker implements the three-state circuit breaker pattern.
type Breaker struct {
	mu            sync.Mutex
	state         State
	failures      int
	lastFailure   time.Time
	probeInFlight bool
	cfg           Config
}

// New creates a circuit breaker with the given configuration.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Breaker{state: StateClosed, cfg: cfg}
}

// Allow reports whether a call may proceed. In half-open state exactly one
// caller is granted a probe until its outcome is recorded.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.cfg.Now().Sub(b.lastFailure) >= b.cfg.RecoveryTimeout {
			b.transitionTo(StateHalfOpen)
			b.probeInFlight = true
			return true
		}
		return false
	case StateHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probeInFlight = false
	if b.state != StateClosed {
		b.transitionTo(StateClosed)
	}
}

// RecordFailure records a failed call. A failed half-open probe reopens the
// circuit and restarts the recovery timer.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.cfg.Now()
	b.probeInFlight = false

	switch b.state {
	case StateClosed:
		if b.failures >= b.cfg.FailureThreshold {
			b.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		b.transitionTo(StateOpen)
	case StateOpen:
		// already open, timer restarted above
	}
}

// Execute runs fn under breaker protection. Returns ErrCircuitOpen without
// invoking fn when the circuit rejects the call.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if !b.Allow() {
		return fmt.Errorf("%w: retry after %v", ErrCircuitOpen, b.cfg.RecoveryTimeout)
	}

	err := fn(ctx)
	if err != nil {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return nil
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// transitionTo changes state; caller must hold the mutex.
func (b *Breaker) transitionTo(newState State) {
	if b.state == newState {
		return
	}
	old := b.state
	b.state = newState
	if newState == StateClosed {
		b.failures = 0
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(old, newState)
	}
}

// Registry holds one breaker per protected resource name. Breakers are
// created on first use and live for the life of the process.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	cfg      Config
	onChange func(resource string, from, to State)
}

// NewRegistry creates a breaker registry. onChange is invoked for every
// transition of any breaker; pass nil to disable.
func NewRegistry(cfg Config, onChange func(resource string, from, to State)) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		cfg:      cfg,
		onChange: onChange,
	}
}

// Get returns the breaker for a resource name, creating it if needed.
func (r *Registry) Get(resource string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[resource]; ok {
		return b
	}

	cfg := r.cfg
	if r.onChange != nil {
		name := resource
		cfg.OnStateChange = func(from, to State) {
			r.onChange(name, from, to)
		}
	}
	b := New(cfg)
	r.breakers[resource] = b
	return b
}
