package resilience

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a Breaker. Zero values take the defaults noted below.
type Settings struct {
	// Trials is how many calls half-open admits and how many must succeed
	// before closing again (default 1).
	Trials uint32
	// Window clears the closed-state counts periodically (default 60s).
	Window time.Duration
	// Cooldown is how long the breaker stays open (default 30s).
	Cooldown time.Duration
	// Trip decides whether the closed breaker opens (default: 5 consecutive failures).
	Trip func(c Counts) bool
	// Failure decides which errors count against the breaker (default: any non-nil).
	Failure func(err error) bool
	// Logger receives state transitions.
	Logger *zap.Logger
	// Clock is used in tests.
	Clock func() time.Time
}

// Counts holds the statistics for the current window
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker guards calls to a remote dependency.
type Breaker struct {
	name string
	set  Settings

	mu       sync.Mutex
	state    State
	counts   Counts
	deadline time.Time
	epoch    uint64
}

// New creates a closed breaker.
func New(name string, set Settings) *Breaker {
	if set.Trials == 0 {
		set.Trials = 1
	}
	if set.Window <= 0 {
		set.Window = 60 * time.Second
	}
	if set.Cooldown <= 0 {
		set.Cooldown = 30 * time.Second
	}
	if set.Trip == nil {
		set.Trip = func(c Counts) bool { return c.ConsecutiveFailures >= 5 }
	}
	if set.Failure == nil {
		set.Failure = func(err error) bool { return err != nil }
	}
	if set.Logger == nil {
		set.Logger = zap.NewNop()
	}
	if set.Clock == nil {
		set.Clock = time.Now
	}

	b := &Breaker{name: name, set: set}
	b.deadline = set.Clock().Add(set.Window)
	return b
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, advancing it if a deadline passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance(b.set.Clock())
	return b.state
}

// Counts returns a copy of the current window's counts.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do runs fn if the breaker admits it. The error from fn is returned
// unchanged; only errors matching Settings.Failure count as failures.
func (b *Breaker) Do(fn func() error) error {
	epoch, err := b.admit()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			b.record(epoch, false)
			panic(p)
		}
	}()

	err = fn()
	b.record(epoch, !b.set.Failure(err))
	return err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.set.Clock())
	switch b.state {
	case StateOpen:
		return b.epoch, ErrCircuitOpen
	case StateHalfOpen:
		if b.counts.Requests >= b.set.Trials {
			return b.epoch, ErrTooManyRequests
		}
	}
	b.counts.Requests++
	return b.epoch, nil
}

func (b *Breaker) record(epoch uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.set.Clock()
	b.advance(now)
	if epoch != b.epoch {
		// the call started in a previous state; its result is stale
		return
	}

	if ok {
		b.counts.success()
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.set.Trials {
			b.transition(StateClosed, now)
		}
		return
	}

	b.counts.failure()
	switch b.state {
	case StateClosed:
		if b.set.Trip(b.counts) {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		b.transition(StateOpen, now)
	}
}

func (b *Breaker) advance(now time.Time) {
	switch b.state {
	case StateClosed:
		if now.After(b.deadline) {
			b.counts = Counts{}
			b.deadline = now.Add(b.set.Window)
			b.epoch++
		}
	case StateOpen:
		if now.After(b.deadline) {
			b.transition(StateHalfOpen, now)
		}
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.counts = Counts{}
	b.epoch++

	switch to {
	case StateClosed:
		b.deadline = now.Add(b.set.Window)
	case StateOpen:
		b.deadline = now.Add(b.set.Cooldown)
	case StateHalfOpen:
		b.deadline = time.Time{}
	}

	b.set.Logger.Warn("circuit breaker state changed",
		zap.String("breaker", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
}
