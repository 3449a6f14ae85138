// Package resilience provides the failure-ratio circuit breaker placed
// in front of catalog lookups, so a struggling database fails quote
// requests fast instead of letting them pile up.
package resilience

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrOpen is returned when the breaker refuses a request.
var ErrOpen = errors.New("circuit breaker open")

// State is the breaker's position in its lifecycle.
type State int

const (
	// Closed admits every request while tracking the failure ratio.
	Closed State = iota
	// Open rejects requests until the cool-off elapses.
	Open
	// HalfOpen admits a single probe to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker opens once the failure ratio over a minimum sample exceeds
// the threshold, stays open for the cool-off, then probes half-open.
type Breaker struct {
	name         string
	minRequests  int
	failureRatio float64
	cooloff      time.Duration
	logger       zerolog.Logger

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
}

// NewBreaker constructs a breaker. Out-of-range arguments fall back to
// sane defaults rather than failing construction.
func NewBreaker(name string, minRequests int, failureRatio float64, cooloff time.Duration, logger zerolog.Logger) *Breaker {
	if minRequests <= 0 {
		minRequests = 10
	}
	if failureRatio <= 0 || failureRatio > 1 {
		failureRatio = 0.5
	}
	if cooloff <= 0 {
		cooloff = 15 * time.Second
	}
	return &Breaker{
		name:         name,
		minRequests:  minRequests,
		failureRatio: failureRatio,
		cooloff:      cooloff,
		logger:       logger,
	}
}

// Allow reports whether a request may proceed. An open breaker admits
// one probe after the cool-off and moves to half-open.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == Open {
		if time.Since(b.openedAt) < b.cooloff {
			return false
		}
		b.transitionLocked(HalfOpen)
	}
	return true
}

// Report records the outcome of an admitted request.
func (b *Breaker) Report(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		if success {
			b.transitionLocked(Closed)
		} else {
			b.transitionLocked(Open)
		}
		return
	}

	if success {
		b.successes++
	} else {
		b.failures++
	}
	total := b.failures + b.successes
	if total < b.minRequests {
		return
	}
	if float64(b.failures)/float64(total) >= b.failureRatio {
		b.transitionLocked(Open)
		return
	}
	if total > b.minRequests*2 {
		// Decay the window so old outcomes stop dominating the ratio.
		b.successes = int(math.Ceil(float64(b.successes) / 2))
		b.failures = int(math.Ceil(float64(b.failures) / 2))
	}
}

// CurrentState returns the state for health reporting.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) transitionLocked(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.failures = 0
	b.successes = 0
	if next == Open {
		b.openedAt = time.Now()
	}

	if breakerState != nil {
		breakerState.WithLabelValues(b.name).Set(float64(next))
	}
	if next == Open && breakerOpenTotal != nil {
		breakerOpenTotal.WithLabelValues(b.name).Inc()
	}
	b.logger.Warn().
		Str("breaker", b.name).
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("breaker state change")
}
