package transport

import (
	"net"

	"golang.org/x/sync/semaphore"
)

// Gate admits accepted connections. It's consulted right in the accept loop, so a
// connection that didn't pass is closed before any goroutine is spawned for it.
type Gate interface {
	Enter(conn net.Conn) bool
	Leave()
}

// Limiter is a Gate bounding the number of simultaneously served connections.
type Limiter struct {
	sem      *semaphore.Weighted
	onReject func(conn net.Conn)
}

// NewLimiter returns a gate admitting at most n connections at once. The onReject
// callback, if any, is called for every connection above the limit, right before it
// gets closed.
func NewLimiter(n int64, onReject func(conn net.Conn)) *Limiter {
	return &Limiter{
		sem:      semaphore.NewWeighted(n),
		onReject: onReject,
	}
}

func (l *Limiter) Enter(conn net.Conn) bool {
	if l.sem.TryAcquire(1) {
		return true
	}

	if l.onReject != nil {
		l.onReject(conn)
	}

	return false
}

func (l *Limiter) Leave() {
	l.sem.Release(1)
}
