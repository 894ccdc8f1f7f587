package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/loom-forge/weaver/core"
	"github.com/loom-forge/weaver/pkg/metrics"
)

// entry holds cached pillar scores with expiry metadata.
type entry struct {
	pillars   map[string]float64
	createdAt time.Time
	expiresAt time.Time
}

func (e *entry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Config holds evaluation cache configuration
type Config struct {
	MaxSize int
	TTL     time.Duration // zero disables expiry
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxSize: 1024,
		TTL:     time.Hour,
	}
}

// Stats tracks cache effectiveness
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// EvalCache memoizes evaluation results keyed by pattern fingerprint, so
// identical patterns always score identically and repeat calls skip the
// external capability.
type EvalCache struct {
	cache  *lru.Cache[string, *entry]
	config *Config
	stats  Stats
	mu     sync.RWMutex
}

// NewEvalCache creates a new evaluation cache
func NewEvalCache(config *Config) (*EvalCache, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cache, err := lru.New[string, *entry](config.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &EvalCache{cache: cache, config: config}, nil
}

// Get retrieves cached pillar scores for a fingerprint
func (c *EvalCache) Get(fingerprint string) (map[string]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache.Get(fingerprint)
	if !ok || e.expired() {
		if ok {
			c.cache.Remove(fingerprint)
		}
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	out := make(map[string]float64, len(e.pillars))
	for k, v := range e.pillars {
		out[k] = v
	}
	return out, true
}

// Set stores pillar scores for a fingerprint
func (c *EvalCache) Set(fingerprint string, pillars map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make(map[string]float64, len(pillars))
	for k, v := range pillars {
		stored[k] = v
	}

	now := time.Now()
	e := &entry{pillars: stored, createdAt: now}
	if c.config.TTL > 0 {
		e.expiresAt = now.Add(c.config.TTL)
	}

	c.cache.Add(fingerprint, e)
	c.stats.Size = c.cache.Len()
}

// GetStats returns a snapshot of cache statistics
func (c *EvalCache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Size = c.cache.Len()
	return s
}

// CachedEvaluator wraps an evaluation capability with the cache. It
// implements core.Evaluator.
type CachedEvaluator struct {
	Inner   core.Evaluator
	Cache   *EvalCache
	Metrics *metrics.PrometheusMetrics // optional
}

// NewCachedEvaluator wraps eval with a fingerprint-keyed cache. m may be nil.
func NewCachedEvaluator(eval core.Evaluator, cache *EvalCache, m *metrics.PrometheusMetrics) *CachedEvaluator {
	return &CachedEvaluator{Inner: eval, Cache: cache, Metrics: m}
}

// Evaluate returns cached pillar scores when the pattern's fingerprint is
// known, otherwise delegates and stores the result.
func (e *CachedEvaluator) Evaluate(ctx context.Context, p core.Pattern) (map[string]float64, error) {
	fp := p.Fingerprint()
	if pillars, ok := e.Cache.Get(fp); ok {
		if e.Metrics != nil {
			e.Metrics.RecordCacheHit()
		}
		return pillars, nil
	}
	if e.Metrics != nil {
		e.Metrics.RecordCacheMiss()
	}

	pillars, err := e.Inner.Evaluate(ctx, p)
	if err != nil {
		return nil, err
	}

	e.Cache.Set(fp, pillars)
	return pillars, nil
}
