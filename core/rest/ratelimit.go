package rest

import (
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterStaleThreshold  = 10 * time.Minute
)

// Limiter enforces one route class's request budget with a token bucket
// per client address. Stale clients are cleaned up inline during Allow calls.
type Limiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	limit       rate.Limit
	burst       int
	retryAfter  int
	lastCleanup time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter creates a limiter allowing the given number of requests per
// window for each client.
func NewLimiter(requests int, window time.Duration) *Limiter {
	perSecond := float64(requests) / window.Seconds()
	return &Limiter{
		visitors:    make(map[string]*visitor),
		limit:       rate.Limit(perSecond),
		burst:       requests,
		retryAfter:  int(math.Ceil(1 / perSecond)),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether a request from the given client key fits the budget.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastCleanup) > limiterCleanupInterval {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterStaleThreshold {
				delete(l.visitors, k)
			}
		}
		l.lastCleanup = now
	}

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(l.limit, l.burst)
		l.visitors[key] = &visitor{limiter: limiter, lastSeen: now}
		limiter.Allow()
		return true
	}

	v.lastSeen = now
	return v.limiter.Allow()
}

// LimiterSet carries the independently configured budgets for each route
// class. One set exists per process, shared by all bound routes of a class.
type LimiterSet struct {
	GetLight  *Limiter
	GetHeavy  *Limiter
	PostLight *Limiter
	PostHeavy *Limiter
	Patch     *Limiter
	Delete    *Limiter
	Login     *Limiter
}

// NewLimiterSet creates the default per-class budgets.
func NewLimiterSet() *LimiterSet {
	return &LimiterSet{
		GetLight:  NewLimiter(100, time.Second),
		GetHeavy:  NewLimiter(50, time.Second),
		PostLight: NewLimiter(50, time.Minute),
		PostHeavy: NewLimiter(15, time.Minute),
		Patch:     NewLimiter(15, time.Minute),
		Delete:    NewLimiter(50, time.Minute),
		Login:     NewLimiter(5, 30*time.Second),
	}
}

// clientKey extracts the client address the budgets are keyed by.
func clientKey(r *http.Request) string {
	return clientKeyFromAddr(r.RemoteAddr)
}

func clientKeyFromAddr(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
