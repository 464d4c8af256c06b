// Package ratelimit implements a token bucket limiter used to throttle
// repeated diagnostic logging (malformed packets, unsupported versions)
// so a misbehaving peer cannot flood the log.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a single token bucket shared across a category of events, not
// keyed per-peer: the Network Engine has exactly one server on the other
// end of each socket, so there is nothing to key by.
type Limiter struct {
	mu       sync.Mutex
	capacity int
	refill   time.Duration
	tokens   int
	lastSeen time.Time
}

// New returns a Limiter allowing capacity events, refilling one token every
// refill duration.
func New(capacity int, refill time.Duration) *Limiter {
	if capacity <= 0 {
		capacity = 1
	}
	if refill <= 0 {
		refill = time.Second
	}
	return &Limiter{capacity: capacity, refill: refill, tokens: capacity, lastSeen: time.Now()}
}

// Allow reports whether an event may proceed now, consuming a token if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastSeen)
	if add := int(elapsed / l.refill); add > 0 {
		l.tokens += add
		if l.tokens > l.capacity {
			l.tokens = l.capacity
		}
		l.lastSeen = now
	}

	if l.tokens <= 0 {
		return false
	}
	l.tokens--
	return true
}
