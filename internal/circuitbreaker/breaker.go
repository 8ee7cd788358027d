package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrOpen is returned by Allow while the breaker is open.
var ErrOpen = errors.New("circuit breaker open")

// State is the breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Breaker guards calls to an upstream API. After FailureThreshold consecutive failures it
// opens and rejects calls until Cooldown has elapsed, then lets a single probe through.
// A successful probe closes it again; a failed probe reopens it.
type Breaker struct {
	tripped atomic.Bool // lock-free view of state != closed

	failureThreshold int
	cooldown         time.Duration
	logger           *zap.Logger
	now              func() time.Time

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool
	lastError           string
}

// Config holds circuit breaker configuration.
type Config struct {
	FailureThreshold int
	Cooldown         time.Duration
	Logger           *zap.Logger
}

// Status holds the current breaker status for logging and HTTP endpoints.
type Status struct {
	State               State     `json:"state"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	OpenedAt            time.Time `json:"opened_at,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
}

// New creates a new circuit breaker with the given configuration.
func New(cfg *Config) (breaker *Breaker, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.FailureThreshold <= 0 {
		return nil, fmt.Errorf("failure threshold must be positive")
	}
	if cfg.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}

	breaker = &Breaker{
		failureThreshold: cfg.FailureThreshold,
		cooldown:         cfg.Cooldown,
		logger:           cfg.Logger,
		now:              time.Now,
		state:            StateClosed,
	}

	BreakerOpen.Set(0)

	return breaker, nil
}

// IsOpen reports whether calls are currently being rejected or probed.
func (b *Breaker) IsOpen() bool {
	return b.tripped.Load()
}

// Allow returns nil if a call may proceed and ErrOpen otherwise.
func (b *Breaker) Allow() error {
	if !b.tripped.Load() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			BreakerRejectedTotal.Inc()
			return ErrOpen
		}
		b.transition(StateHalfOpen)
		b.probeInFlight = true
		return nil
	default:
		if b.probeInFlight {
			BreakerRejectedTotal.Inc()
			return ErrOpen
		}
		b.probeInFlight = true
		return nil
	}
}

// Record reports the outcome of a call that Allow let through.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInFlight = false

	if err == nil {
		b.consecutiveFailures = 0
		b.lastError = ""
		if b.state != StateClosed {
			b.transition(StateClosed)
		}
		return
	}

	b.consecutiveFailures++
	b.lastError = err.Error()

	if b.state == StateHalfOpen || b.consecutiveFailures >= b.failureThreshold {
		b.openedAt = b.now()
		if b.state != StateOpen {
			b.transition(StateOpen)
		}
	}
}

// Release frees a call that Allow let through without recording an outcome.
// It is used when the caller gave up before the upstream answered.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInFlight = false
}

// GetStatus returns the current breaker status.
func (b *Breaker) GetStatus() (status Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status = Status{
		State:               b.state,
		ConsecutiveFailures: b.consecutiveFailures,
		LastError:           b.lastError,
	}
	if b.state != StateClosed {
		status.OpenedAt = b.openedAt
	}

	return status
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	b.state = to
	b.tripped.Store(to != StateClosed)
	BreakerStateChanges.Inc()

	switch to {
	case StateOpen:
		BreakerOpen.Set(1)
		b.logger.Warn("circuit-breaker-opened",
			zap.String("from", string(from)),
			zap.Int("consecutive-failures", b.consecutiveFailures),
			zap.Duration("cooldown", b.cooldown),
			zap.String("last-error", b.lastError))
	case StateHalfOpen:
		b.logger.Info("circuit-breaker-probing",
			zap.Duration("open-for", b.now().Sub(b.openedAt)))
	case StateClosed:
		BreakerOpen.Set(0)
		b.logger.Info("circuit-breaker-closed",
			zap.String("from", string(from)))
	}
}
