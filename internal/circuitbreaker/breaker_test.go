package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(t *testing.T, threshold int, cooldown time.Duration) (*Breaker, *fakeClock) {
	t.Helper()

	breaker, err := New(&Config{
		FailureThreshold: threshold,
		Cooldown:         cooldown,
		Logger:           zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("failed to create breaker: %v", err)
	}

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	breaker.now = clock.Now

	return breaker, clock
}

var errUpstream = errors.New("upstream unavailable")

func TestNew(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid-config",
			config: &Config{FailureThreshold: 5, Cooldown: 30 * time.Second, Logger: logger},
		},
		{
			name:    "nil-config",
			config:  nil,
			wantErr: true,
			errMsg:  "config cannot be nil",
		},
		{
			name:    "nil-logger",
			config:  &Config{FailureThreshold: 5, Cooldown: 30 * time.Second},
			wantErr: true,
			errMsg:  "logger cannot be nil",
		},
		{
			name:    "zero-failure-threshold",
			config:  &Config{FailureThreshold: 0, Cooldown: 30 * time.Second, Logger: logger},
			wantErr: true,
			errMsg:  "failure threshold must be positive",
		},
		{
			name:    "zero-cooldown",
			config:  &Config{FailureThreshold: 5, Cooldown: 0, Logger: logger},
			wantErr: true,
			errMsg:  "cooldown must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker, err := New(tt.config)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
					return
				}
				if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if breaker.IsOpen() {
				t.Error("expected breaker to start closed")
			}
			if status := breaker.GetStatus(); status.State != StateClosed {
				t.Errorf("expected state %q, got %q", StateClosed, status.State)
			}
		})
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker, _ := newTestBreaker(t, 3, time.Minute)

	for i := 0; i < 2; i++ {
		breaker.Record(errUpstream)
	}
	if breaker.IsOpen() {
		t.Fatal("expected breaker closed below threshold")
	}

	breaker.Record(errUpstream)
	if !breaker.IsOpen() {
		t.Fatal("expected breaker open at threshold")
	}

	if err := breaker.Allow(); !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}

	status := breaker.GetStatus()
	if status.State != StateOpen {
		t.Errorf("expected state %q, got %q", StateOpen, status.State)
	}
	if status.ConsecutiveFailures != 3 {
		t.Errorf("expected 3 consecutive failures, got %d", status.ConsecutiveFailures)
	}
	if status.LastError != errUpstream.Error() {
		t.Errorf("expected last error %q, got %q", errUpstream.Error(), status.LastError)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker, _ := newTestBreaker(t, 2, time.Minute)

	breaker.Record(errUpstream)
	breaker.Record(nil)
	breaker.Record(errUpstream)

	if breaker.IsOpen() {
		t.Error("expected non-consecutive failures to keep breaker closed")
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	t.Run("probe-success-closes", func(t *testing.T) {
		breaker, clock := newTestBreaker(t, 1, time.Minute)
		breaker.Record(errUpstream)

		clock.Advance(30 * time.Second)
		if err := breaker.Allow(); !errors.Is(err, ErrOpen) {
			t.Fatalf("expected ErrOpen during cooldown, got %v", err)
		}

		clock.Advance(31 * time.Second)
		if err := breaker.Allow(); err != nil {
			t.Fatalf("expected probe to be allowed after cooldown, got %v", err)
		}
		if status := breaker.GetStatus(); status.State != StateHalfOpen {
			t.Errorf("expected state %q, got %q", StateHalfOpen, status.State)
		}

		// Only one probe at a time.
		if err := breaker.Allow(); !errors.Is(err, ErrOpen) {
			t.Errorf("expected second concurrent probe to be rejected, got %v", err)
		}

		breaker.Record(nil)
		if breaker.IsOpen() {
			t.Error("expected breaker closed after successful probe")
		}
		if err := breaker.Allow(); err != nil {
			t.Errorf("expected calls allowed after close, got %v", err)
		}
	})

	t.Run("probe-failure-reopens", func(t *testing.T) {
		breaker, clock := newTestBreaker(t, 3, time.Minute)
		for i := 0; i < 3; i++ {
			breaker.Record(errUpstream)
		}

		clock.Advance(2 * time.Minute)
		if err := breaker.Allow(); err != nil {
			t.Fatalf("expected probe to be allowed, got %v", err)
		}

		breaker.Record(errUpstream)

		status := breaker.GetStatus()
		if status.State != StateOpen {
			t.Fatalf("expected state %q after failed probe, got %q", StateOpen, status.State)
		}
		if !status.OpenedAt.Equal(clock.Now()) {
			t.Errorf("expected cooldown to restart at %v, got %v", clock.Now(), status.OpenedAt)
		}
		if err := breaker.Allow(); !errors.Is(err, ErrOpen) {
			t.Errorf("expected ErrOpen after failed probe, got %v", err)
		}
	})

	t.Run("released-probe-frees-slot", func(t *testing.T) {
		breaker, clock := newTestBreaker(t, 1, time.Minute)
		breaker.Record(errUpstream)

		clock.Advance(2 * time.Minute)
		if err := breaker.Allow(); err != nil {
			t.Fatalf("expected probe to be allowed, got %v", err)
		}

		breaker.Release()

		status := breaker.GetStatus()
		if status.State != StateHalfOpen {
			t.Errorf("expected state %q after release, got %q", StateHalfOpen, status.State)
		}
		if status.ConsecutiveFailures != 1 {
			t.Errorf("expected failure count unchanged, got %d", status.ConsecutiveFailures)
		}
		if err := breaker.Allow(); err != nil {
			t.Errorf("expected a new probe after release, got %v", err)
		}
	})
}

func TestBreaker_ConcurrentUse(t *testing.T) {
	breaker, _ := newTestBreaker(t, 1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(fail bool) {
			defer wg.Done()
			if breaker.Allow() != nil {
				return
			}
			if fail {
				breaker.Record(errUpstream)
			} else {
				breaker.Record(nil)
			}
			_ = breaker.GetStatus()
		}(i%2 == 0)
	}
	wg.Wait()

	if breaker.IsOpen() {
		t.Error("expected breaker closed below threshold")
	}
}
