package retry

import (
	"context"
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// State of a retry machine
type State int

const (
	StateAttempting State = iota
	StateBackingOff
	StateSucceeded
	StateExhaustedFailed
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateBackingOff:
		return "backing_off"
	case StateSucceeded:
		return "succeeded"
	case StateExhaustedFailed:
		return "exhausted_failed"
	default:
		return "unknown"
	}
}

// Class tells the machine whether an error is worth another attempt
type Class int

const (
	Transient Class = iota
	Permanent
)

// Clock abstracts waiting so tests can run without real delays
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx is done, returning ctx.Err() in the latter case
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns a Clock backed by the time package
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Policy configures how many retries follow the first attempt and how long to wait
type Policy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	Multiplier     float64
	MaxBackoff     time.Duration
}

// DefaultPolicy retries three times after 1s, 2s and 4s
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		Multiplier:     2,
		MaxBackoff:     30 * time.Second,
	}
}

// Backoff returns the wait before retry n, where n starts at 1
func (p Policy) Backoff(n int) time.Duration {
	if n < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.InitialBackoff) * math.Pow(mult, float64(n-1))
	if p.MaxBackoff > 0 && d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	return time.Duration(d)
}

// Transition is reported to the observer on every state change
type Transition struct {
	From    State
	To      State
	Attempt int
	Backoff time.Duration
	Err     error
}

// Machine drives one operation through Attempting, BackingOff, Succeeded and
// ExhaustedFailed. A Machine is single use.
type Machine struct {
	policy   Policy
	clock    Clock
	classify func(error) Class
	observe  func(Transition)

	state   State
	attempt int
}

type Option func(*Machine)

func WithClock(clock Clock) Option {
	return func(m *Machine) { m.clock = clock }
}

// WithClassifier sets the error classifier. The default treats every error as transient.
func WithClassifier(fn func(error) Class) Option {
	return func(m *Machine) { m.classify = fn }
}

func WithObserver(fn func(Transition)) Option {
	return func(m *Machine) { m.observe = fn }
}

func New(policy Policy, opts ...Option) *Machine {
	m := &Machine{
		policy:   policy,
		clock:    RealClock(),
		classify: func(error) Class { return Transient },
		observe:  func(Transition) {},
		state:    StateAttempting,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State { return m.state }

// Attempts returns how many times the operation has been invoked
func (m *Machine) Attempts() int { return m.attempt }

func (m *Machine) transition(to State, backoff time.Duration, err error) {
	t := Transition{From: m.state, To: to, Attempt: m.attempt, Backoff: backoff, Err: err}
	m.state = to
	m.observe(t)
}

// Run invokes fn until it succeeds, fails permanently, runs out of retries or ctx ends.
// The returned error wraps the last error from fn, or the context error.
func (m *Machine) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	for {
		m.attempt++
		err := fn(ctx)
		if err == nil {
			m.transition(StateSucceeded, 0, nil)
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			m.transition(StateExhaustedFailed, 0, err)
			return goerr.Wrap(ctxErr, "operation cancelled", goerr.V("attempts", m.attempt), goerr.V("last_error", err.Error()))
		}

		if m.classify(err) == Permanent {
			m.transition(StateExhaustedFailed, 0, err)
			return goerr.Wrap(err, "permanent failure", goerr.V("attempts", m.attempt))
		}

		if m.attempt > m.policy.MaxRetries {
			m.transition(StateExhaustedFailed, 0, err)
			return goerr.Wrap(err, "retries exhausted", goerr.V("attempts", m.attempt))
		}

		backoff := m.policy.Backoff(m.attempt)
		m.transition(StateBackingOff, backoff, err)
		if sleepErr := m.clock.Sleep(ctx, backoff); sleepErr != nil {
			m.transition(StateExhaustedFailed, 0, err)
			return goerr.Wrap(sleepErr, "cancelled while backing off", goerr.V("attempts", m.attempt), goerr.V("last_error", err.Error()))
		}
		m.transition(StateAttempting, 0, nil)
	}
}
