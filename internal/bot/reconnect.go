package bot

import (
	"context"
	"time"
)

// Backoff produces reconnect delays that double after every failed attempt
// up to a ceiling
type Backoff struct {
	current time.Duration
	min     time.Duration
	max     time.Duration
}

// NewBackoff creates a backoff starting at min and capped at max
func NewBackoff(min, max time.Duration) *Backoff {
	if max < min {
		max = min
	}
	return &Backoff{current: min, min: min, max: max}
}

// Next returns the delay to wait now and increases the following one
func (b *Backoff) Next() time.Duration {
	d := b.current
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset returns the delay to the minimum value
func (b *Backoff) Reset() {
	b.current = b.min
}

// sleep waits for d or until ctx ends, reporting whether the full delay passed
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
