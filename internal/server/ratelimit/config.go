package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one method and path pattern. A "*" path segment matches any single segment.
type Rule struct {
	Method  string
	Pattern string
	Limit   int           // requests per Window; 0 means unlimited
	Window  time.Duration // refill period for Limit tokens
	Burst   int           // bucket capacity, Limit when zero
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept.
	IdleTTL time.Duration
	Allow   map[string]bool
	Deny    map[string]bool
	Rules   []Rule
}

// DefaultConfig returns an enabled limiter with DefaultRules.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Allow:           map[string]bool{},
		Deny:            map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules puts strict limits on endpoints that call the language model or fetch
// remote pages. Health checks are never limited.
func DefaultRules() []Rule {
	return []Rule{
		{Method: "GET", Pattern: "/health", Limit: 0},

		{Method: "POST", Pattern: "/interview", Limit: 120, Window: time.Hour, Burst: 10},
		{Method: "POST", Pattern: "/sessions", Limit: 20, Window: time.Hour, Burst: 5},
		{Method: "POST", Pattern: "/sessions/*/responses", Limit: 120, Window: time.Hour, Burst: 10},
		{Method: "POST", Pattern: "/sessions/*/end", Limit: 20, Window: time.Hour, Burst: 5},

		{Method: "POST", Pattern: "/jobs/fetch", Limit: 30, Window: time.Hour, Burst: 5},
		{Method: "POST", Pattern: "/resume/upload", Limit: 30, Window: time.Hour, Burst: 5},
	}
}

// LoadConfig reads RATE_LIMIT_* environment variables over DefaultConfig.
func LoadConfig() *Config {
	return loadFrom(os.Getenv)
}

func loadFrom(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	if v, err := strconv.ParseBool(getenv("RATE_LIMIT_ENABLED")); err == nil {
		cfg.Enabled = v
	}
	if v, err := strconv.Atoi(getenv("RATE_LIMIT_DEFAULT_LIMIT")); err == nil && v > 0 {
		cfg.DefaultLimit = v
	}
	if v, err := time.ParseDuration(getenv("RATE_LIMIT_DEFAULT_WINDOW")); err == nil && v > 0 {
		cfg.DefaultWindow = v
	}
	if v, err := time.ParseDuration(getenv("RATE_LIMIT_CLEANUP_INTERVAL")); err == nil && v > 0 {
		cfg.CleanupInterval = v
	}
	cfg.Allow = parseIPList(getenv("RATE_LIMIT_WHITELIST"))
	cfg.Deny = parseIPList(getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

func parseIPList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			out[ip] = true
		}
	}
	return out
}
