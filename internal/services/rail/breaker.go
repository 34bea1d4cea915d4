package rail

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

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

// BreakerConfig tunes the circuit breaker transitions.
type BreakerConfig struct {
	// FailureThreshold is the failure rate within the rolling window that
	// trips the breaker, in [0, 1].
	FailureThreshold float64
	// MinRequests is the number of calls the window must hold before the
	// failure rate is evaluated at all.
	MinRequests int
	// Window is the rolling window over which calls are counted.
	Window time.Duration
	// Cooldown is how long an open breaker waits before allowing a probe.
	Cooldown time.Duration
}

// Default breaker settings
const (
	DefaultFailureThreshold = 0.5
	DefaultMinRequests      = 5
	DefaultWindow           = 30 * time.Second
	DefaultCooldown         = 10 * time.Second
)

// CircuitBreaker wraps a rail Client and guards the system against a
// degraded rail. Closed passes calls through and counts failures; Open
// short-circuits to ErrUnavailable without touching the client; Half-Open
// lets a single probe through and transitions on its outcome.
//
// The breaker performs no retries of its own; retry policy belongs to the
// caller's boundary so no hidden duplicate settlement attempts can happen.
type CircuitBreaker struct {
	client Client
	cfg    BreakerConfig
	log    *logrus.Logger

	mu          sync.Mutex
	state       State
	windowStart time.Time
	successes   int
	failures    int
	openedAt    time.Time
	probing     bool

	now func() time.Time
}

func NewCircuitBreaker(client Client, cfg BreakerConfig, log *logrus.Logger) *CircuitBreaker {
	if client == nil {
		panic("rail client is required")
	}
	if cfg.FailureThreshold <= 0 || cfg.FailureThreshold > 1 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.MinRequests <= 0 {
		cfg.MinRequests = DefaultMinRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if log == nil {
		log = logrus.New()
	}
	return &CircuitBreaker{
		client: client,
		cfg:    cfg,
		log:    log,
		state:  StateClosed,
		now:    time.Now,
	}
}

// State returns the current breaker state.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SettlePayment forwards the call to the wrapped client subject to the
// breaker state. Every failure path returns ErrUnavailable.
func (b *CircuitBreaker) SettlePayment(ctx context.Context, s Settlement) error {
	if err := b.before(); err != nil {
		return err
	}

	err := b.client.SettlePayment(ctx, s)
	b.after(err)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (b *CircuitBreaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		b.transition(StateHalfOpen)
		b.probing = true
		return nil
	case StateHalfOpen:
		if b.probing {
			// One probe at a time; everyone else short-circuits.
			return fmt.Errorf("%w: probe in flight", ErrUnavailable)
		}
		b.probing = true
		return nil
	default:
		return nil
	}
}

func (b *CircuitBreaker) after(callErr error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probing = false
		if callErr != nil {
			b.openedAt = b.now()
			b.transition(StateOpen)
		} else {
			b.resetWindow()
			b.transition(StateClosed)
		}
		return
	}

	now := b.now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) > b.cfg.Window {
		b.resetWindow()
		b.windowStart = now
	}

	if callErr != nil {
		b.failures++
	} else {
		b.successes++
	}

	total := b.failures + b.successes
	if total >= b.cfg.MinRequests {
		rate := float64(b.failures) / float64(total)
		if rate >= b.cfg.FailureThreshold {
			b.openedAt = now
			b.transition(StateOpen)
		}
	}
}

func (b *CircuitBreaker) resetWindow() {
	b.failures = 0
	b.successes = 0
	b.windowStart = time.Time{}
}

func (b *CircuitBreaker) transition(next State) {
	if b.state == next {
		return
	}
	b.log.WithFields(logrus.Fields{
		"from": b.state.String(),
		"to":   next.String(),
	}).Warn("circuit breaker state change")
	b.state = next
}
