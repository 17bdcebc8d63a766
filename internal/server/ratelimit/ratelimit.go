// Package ratelimit limits requests per client and endpoint with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	capacity float64
	rate     float64 // tokens per second
	tokens   float64
	last     time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{capacity: float64(capacity), rate: rate, tokens: float64(capacity), last: now}
}

// take refills for the time elapsed since the last call and consumes one token if one is
// available. It reports the tokens left, when the bucket will be full again, and when the
// next token will be available.
func (b *bucket) take(now time.Time) (ok bool, remaining int, full, next time.Time) {
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.last).Seconds()*b.rate)
	b.last = now
	if b.tokens >= 1 {
		b.tokens--
		ok = true
	}
	full = now
	if b.tokens < b.capacity {
		full = now.Add(time.Duration((b.capacity - b.tokens) / b.rate * float64(time.Second)))
	}
	next = now
	if b.tokens < 1 {
		next = now.Add(time.Duration((1 - b.tokens) / b.rate * float64(time.Second)))
	}
	return ok, int(b.tokens), full, next
}

// Info describes the limit applied to one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	b        *bucket
	lastSeen time.Time
}

// Limiter tracks one bucket per client and matched endpoint.
type Limiter struct {
	cfg  *Config
	now  func() time.Time
	mu   sync.Mutex
	seen map[string]*entry
	stop chan struct{}
	once sync.Once
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig. When enabled, idle
// buckets are dropped in the background until Stop is called.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &Limiter{cfg: cfg, now: time.Now, seen: make(map[string]*entry), stop: make(chan struct{})}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.cleanupLoop(cfg.CleanupInterval)
	}
	return l
}

// Allow decides whether clientID may call method on path now.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || l.cfg.Allow[clientID] {
		return true, Info{Allowed: true}
	}
	if l.cfg.Deny[clientID] {
		return false, Info{}
	}

	rule := Match(method, path, l.cfg.Rules)
	key := clientID + " " + method + " " + path
	if rule == nil {
		rule = &Rule{Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
	} else {
		key = clientID + " " + method + " " + rule.Pattern
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}
	burst := rule.Burst
	if burst <= 0 {
		burst = rule.Limit
	}

	now := l.now()
	l.mu.Lock()
	e, ok := l.seen[key]
	if !ok {
		e = &entry{b: newBucket(burst, float64(rule.Limit)/rule.Window.Seconds(), now)}
		l.seen[key] = e
	}
	e.lastSeen = now
	allowed, remaining, full, next := e.b.take(now)
	l.mu.Unlock()

	info := Info{Allowed: allowed, Limit: rule.Limit, Remaining: remaining, ResetTime: full}
	if !allowed {
		info.RetryAfter = max(next.Sub(now), 0)
	}
	return allowed, info
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.prune()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) prune() {
	ttl := l.cfg.IdleTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cutoff := l.now().Add(-ttl)
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.seen {
		if e.lastSeen.Before(cutoff) {
			delete(l.seen, k)
		}
	}
}

// Stop ends background cleanup. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
