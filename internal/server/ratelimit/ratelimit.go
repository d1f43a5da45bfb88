// Package ratelimit provides per-client token bucket limits for expensive
// endpoints.
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Rule limits one method and path. Burst defaults to Limit.
type Rule struct {
	Method string
	Path   string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	Rules   []Rule
	// MaxClients bounds the number of buckets kept in memory
	MaxClients int
	Whitelist  map[string]bool
}

// DefaultMaxClients is used when Config.MaxClients is zero.
const DefaultMaxClients = 10000

// DefaultConfig limits package generation, which calls the model once per
// document. Reads are not limited.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Rules: []Rule{
			{Method: "POST", Path: "/packages", Limit: 30, Window: time.Hour, Burst: 5},
			{Method: "POST", Path: "/packages/stream", Limit: 30, Window: time.Hour, Burst: 5},
		},
		MaxClients: DefaultMaxClients,
	}
}

// Info describes the limit state after a call to Allow.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

// take refills the bucket and consumes one token if available.
func (b *bucket) take(now time.Time) (bool, int, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = min(b.capacity, b.tokens+now.Sub(b.lastRefill).Seconds()*b.refillRate)
	b.lastRefill = now

	allowed := b.tokens >= 1
	if allowed {
		b.tokens--
	}

	reset := now
	if b.tokens < b.capacity {
		secs := (b.capacity - b.tokens) / b.refillRate
		reset = now.Add(time.Duration(secs * float64(time.Second)))
	}
	return allowed, int(b.tokens), reset
}

// Limiter tracks one bucket per client and rule. Idle buckets expire after
// the longest rule window, when they would be full again anyway.
type Limiter struct {
	cfg     Config
	buckets *expirable.LRU[string, *bucket]
	mu      sync.Mutex
	now     func() time.Time
}

// NewLimiter creates a limiter for cfg.
func NewLimiter(cfg Config) *Limiter {
	size := cfg.MaxClients
	if size <= 0 {
		size = DefaultMaxClients
	}
	var ttl time.Duration
	for _, r := range cfg.Rules {
		if r.Window > ttl {
			ttl = r.Window
		}
	}
	if ttl == 0 {
		ttl = time.Hour
	}
	return &Limiter{
		cfg:     cfg,
		buckets: expirable.NewLRU[string, *bucket](size, nil, ttl),
		now:     time.Now,
	}
}

// Allow reports whether clientID may call method on path.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if l == nil || !l.cfg.Enabled || l.cfg.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	rule := l.match(path, method)
	if rule == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	b := l.bucket(clientID+":"+method+":"+path, rule, now)
	allowed, remaining, reset := b.take(now)

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		// next token, not a full bucket
		info.RetryAfter = time.Duration(float64(time.Second) / b.refillRate)
	}
	return allowed, info
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	return l.buckets.Len()
}

func (l *Limiter) match(path, method string) *Rule {
	for i := range l.cfg.Rules {
		r := &l.cfg.Rules[i]
		if r.Method == method && r.Path == path {
			return r
		}
	}
	return nil
}

func (l *Limiter) bucket(key string, rule *Rule, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets.Get(key); ok {
		return b
	}
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := &bucket{
		capacity:   float64(capacity),
		refillRate: float64(rule.Limit) / rule.Window.Seconds(),
		tokens:     float64(capacity),
		lastRefill: now,
	}
	l.buckets.Add(key, b)
	return b
}
