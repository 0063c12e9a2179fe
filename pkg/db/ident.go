package db

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// newID returns a random UUIDv4 string.
func newID() string {
	return uuid.NewString()
}

// Clock hands out epoch-millisecond timestamps that never go backwards, even
// when called twice within the same millisecond.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClock returns a Clock reading from now, or from time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}

	return &Clock{now: now}
}

// Now returns the current timestamp in milliseconds.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms

	return ms
}
