package weather

import (
	"errors"
	"sync"
	"time"
)

// ErrThrottled is returned when a pull is attempted inside the cool-down window.
var ErrThrottled = errors.New("weather refresh throttled")

// Throttle admits at most one pull per cool-down window, whoever asks.
type Throttle struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     time.Time
}

// NewThrottle returns a Throttle with the given window.
func NewThrottle(cooldown time.Duration) *Throttle {
	return &Throttle{cooldown: cooldown}
}

// Allow records a pull at now unless the previous one was less than the
// cool-down ago, in which case it returns ErrThrottled and the time left.
func (t *Throttle) Allow(now time.Time) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.last.IsZero() {
		if wait := t.last.Add(t.cooldown).Sub(now); wait > 0 {
			return wait, ErrThrottled
		}
	}
	t.last = now
	return 0, nil
}

// Reset forgets the last pull.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.last = time.Time{}
	t.mu.Unlock()
}
