package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(cfg *Config) (*Limiter, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestBucket_TakeAndRefill(t *testing.T) {
	start := time.Now()
	b := newBucket(2, 1, start)

	ok, remaining, _, next := b.take(start)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, start, next)
	ok, _, _, _ = b.take(start)
	assert.True(t, ok)
	ok, _, full, next := b.take(start)
	assert.False(t, ok)
	assert.Equal(t, start.Add(2*time.Second), full)
	assert.Equal(t, start.Add(time.Second), next)

	ok, _, _, _ = b.take(start.Add(1100 * time.Millisecond))
	assert.True(t, ok)
}

func TestMatch(t *testing.T) {
	rules := DefaultRules()

	r := Match("POST", "/sessions/abc-123/responses", rules)
	require.NotNil(t, r)
	assert.Equal(t, "/sessions/*/responses", r.Pattern)

	r = Match("POST", "/sessions", rules)
	require.NotNil(t, r)
	assert.Equal(t, 20, r.Limit)

	assert.Nil(t, Match("GET", "/sessions/abc", rules))
	assert.Nil(t, Match("POST", "/sessions/abc/responses/extra", rules))
	require.NotNil(t, Match("GET", "/health", rules))
}

func TestLimiter_EndpointRuleSharedAcrossSessions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{{Method: "POST", Pattern: "/sessions/*/end", Limit: 2, Window: time.Hour, Burst: 2}}
	l, _ := testLimiter(cfg)

	ok, info := l.Allow("10.0.0.1", "/sessions/a/end", "POST")
	assert.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	ok, _ = l.Allow("10.0.0.1", "/sessions/b/end", "POST")
	assert.True(t, ok)
	ok, info = l.Allow("10.0.0.1", "/sessions/c/end", "POST")
	assert.False(t, ok)
	assert.Greater(t, info.RetryAfter, time.Duration(0))

	// Other clients have their own bucket.
	ok, _ = l.Allow("10.0.0.2", "/sessions/a/end", "POST")
	assert.True(t, ok)
}

func TestLimiter_DefaultLimitAndRefill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = nil
	cfg.DefaultLimit = 1
	cfg.DefaultWindow = time.Minute
	l, now := testLimiter(cfg)

	ok, _ := l.Allow("c", "/sessions/x", "GET")
	assert.True(t, ok)
	ok, _ = l.Allow("c", "/sessions/x", "GET")
	assert.False(t, ok)

	*now = now.Add(time.Minute)
	ok, _ = l.Allow("c", "/sessions/x", "GET")
	assert.True(t, ok)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := testLimiter(DefaultConfig())
	for i := 0; i < 1000; i++ {
		ok, _ := l.Allow("c", "/health", "GET")
		require.True(t, ok)
	}
}

func TestLimiter_AllowDenyDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Allow = map[string]bool{"trusted": true}
	cfg.Deny = map[string]bool{"blocked": true}
	l, _ := testLimiter(cfg)

	ok, _ := l.Allow("blocked", "/health", "GET")
	assert.False(t, ok)
	for i := 0; i < 50; i++ {
		ok, _ = l.Allow("trusted", "/sessions", "POST")
		require.True(t, ok)
	}

	off := DefaultConfig()
	off.Enabled = false
	l, _ = testLimiter(off)
	ok, _ = l.Allow("blocked", "/sessions", "POST")
	assert.True(t, ok)
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{{Method: "POST", Pattern: "/interview", Limit: 50, Window: time.Hour, Burst: 50}}
	l, _ := testLimiter(cfg)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/interview", "POST"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestLimiter_Prune(t *testing.T) {
	l, now := testLimiter(DefaultConfig())
	l.Allow("c", "/sessions", "POST")
	require.Len(t, l.seen, 1)

	*now = now.Add(2 * time.Hour)
	l.prune()
	assert.Empty(t, l.seen)
	l.Stop()
	l.Stop()
}

func TestLoadFrom(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_ENABLED":       "false",
		"RATE_LIMIT_DEFAULT_LIMIT": "5",
		"RATE_LIMIT_WHITELIST":     "1.1.1.1, 2.2.2.2",
	}
	cfg := loadFrom(func(k string) string { return env[k] })
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.DefaultLimit)
	assert.True(t, cfg.Allow["2.2.2.2"])
	assert.Empty(t, cfg.Deny)
}

func TestLimiter_RetryAfterIsNextToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{{Method: "POST", Pattern: "/sessions", Limit: 4, Window: 4 * time.Second, Burst: 4}}
	l, _ := testLimiter(cfg)

	for i := 0; i < 4; i++ {
		ok, _ := l.Allow("10.0.0.9", "/sessions", "POST")
		require.True(t, ok)
	}
	ok, info := l.Allow("10.0.0.9", "/sessions", "POST")
	assert.False(t, ok)
	assert.InDelta(t, float64(time.Second), float64(info.RetryAfter), float64(time.Millisecond))
	assert.Greater(t, info.ResetTime.Sub(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), 3*time.Second)
}
