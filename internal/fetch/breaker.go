package fetch

import (
	"sync"
	"time"
)

// breakerState is the state of the scheduled-refresh circuit breaker.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes the scheduled-refresh breaker.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures before tripping open
	SuccessThreshold int           // consecutive successes to close from half-open
	ResetAfter       time.Duration // how long to stay open before probing again
}

// DefaultBreakerConfig matches the teacher's resilience defaults, tuned
// down for a single OLT: three bad refreshes in a row (rather than five)
// is enough signal that the device or link is unhealthy.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		ResetAfter:       5 * time.Minute,
	}
}

// ScheduledRefreshBreaker guards only the periodic, unattended refresh
// timer — an operator-triggered POST /api/olt/refresh always runs,
// because a human asking for a refresh has already decided the OLT is
// worth talking to again.
type ScheduledRefreshBreaker struct {
	mu sync.Mutex

	cfg          BreakerConfig
	state        breakerState
	failureCount int
	successCount int
	openedAt     time.Time
}

func NewScheduledRefreshBreaker(cfg BreakerConfig) *ScheduledRefreshBreaker {
	return &ScheduledRefreshBreaker{cfg: cfg, state: breakerClosed}
}

// AllowScheduled reports whether the timer-driven refresh should run this
// tick, transitioning open→half-open once ResetAfter has elapsed.
func (b *ScheduledRefreshBreaker) AllowScheduled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed, breakerHalfOpen:
		return true
	case breakerOpen:
		if time.Since(b.openedAt) >= b.cfg.ResetAfter {
			b.state = breakerHalfOpen
			b.failureCount = 0
			b.successCount = 0
			return true
		}
		return false
	default:
		return false
	}
}

func (b *ScheduledRefreshBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		b.failureCount = 0
	case breakerHalfOpen:
		b.successCount++
		if b.successCount >= b.cfg.SuccessThreshold {
			b.state = breakerClosed
			b.failureCount = 0
			b.successCount = 0
		}
	}
}

func (b *ScheduledRefreshBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		b.failureCount++
		if b.failureCount >= b.cfg.FailureThreshold {
			b.state = breakerOpen
			b.openedAt = time.Now()
		}
	case breakerHalfOpen:
		b.state = breakerOpen
		b.openedAt = time.Now()
		b.successCount = 0
	}
}

func (b *ScheduledRefreshBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}
