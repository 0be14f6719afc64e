package middleware

import (
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// FailureThrottle rate limits authentication failures per remote address.
// Only failed attempts consume budget, so a well-behaved caller with valid
// credentials is never throttled.
type FailureThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewFailureThrottle(failuresPerSecond float64, burst int) *FailureThrottle {
	return &FailureThrottle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(failuresPerSecond),
		burst:    burst,
	}
}

func (t *FailureThrottle) limiter(addr string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, ok := t.limiters[addr]
	if !ok {
		limiter = rate.NewLimiter(t.limit, t.burst)
		t.limiters[addr] = limiter
	}
	return limiter
}

// Blocked reports whether the address has exhausted its failure budget.
func (t *FailureThrottle) Blocked(addr string) bool {
	return t.limiter(addr).Tokens() < 1
}

// RecordFailure consumes one unit of the failure budget for the address.
func (t *FailureThrottle) RecordFailure(addr string) {
	t.limiter(addr).Allow()
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
