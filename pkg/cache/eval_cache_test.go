package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/loom-forge/weaver/core"
	"github.com/loom-forge/weaver/pkg/metrics"
)

type countingEvaluator struct {
	calls   int
	pillars map[string]float64
}

func (c *countingEvaluator) Evaluate(ctx context.Context, p core.Pattern) (map[string]float64, error) {
	c.calls++
	return c.pillars, nil
}

func testPattern(t *testing.T, desc string) core.Pattern {
	t.Helper()
	p, err := core.NewPattern("p1", []core.Component{{Name: "auth", Description: desc}}, nil)
	require.NoError(t, err)
	return p
}

func TestEvalCacheHitAndMiss(t *testing.T) {
	c, err := NewEvalCache(&Config{MaxSize: 4, TTL: time.Minute})
	require.NoError(t, err)

	_, ok := c.Get("fp1")
	require.False(t, ok)

	c.Set("fp1", map[string]float64{"security": 40})
	got, ok := c.Get("fp1")
	require.True(t, ok)
	require.Equal(t, 40.0, got["security"])

	stats := c.GetStats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
}

func TestEvalCacheReturnsCopies(t *testing.T) {
	c, err := NewEvalCache(nil)
	require.NoError(t, err)

	c.Set("fp", map[string]float64{"cost": 10})
	first, _ := c.Get("fp")
	first["cost"] = 99

	second, _ := c.Get("fp")
	require.Equal(t, 10.0, second["cost"])
}

func TestCachedEvaluatorSkipsRepeatCalls(t *testing.T) {
	cache, err := NewEvalCache(nil)
	require.NoError(t, err)
	inner := &countingEvaluator{pillars: map[string]float64{"security": 55}}
	eval := NewCachedEvaluator(inner, cache, nil)

	p := testPattern(t, "Ory")
	for i := 0; i < 3; i++ {
		got, err := eval.Evaluate(context.Background(), p)
		require.NoError(t, err)
		require.Equal(t, 55.0, got["security"])
	}
	require.Equal(t, 1, inner.calls)

	// a structurally different pattern misses
	other := testPattern(t, "Keycloak")
	_, err = eval.Evaluate(context.Background(), other)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestCachedEvaluatorRecordsMetrics(t *testing.T) {
	cache, err := NewEvalCache(nil)
	require.NoError(t, err)
	m := metrics.NewPrometheusMetrics()
	inner := &countingEvaluator{pillars: map[string]float64{"security": 55}}
	eval := NewCachedEvaluator(inner, cache, m)

	p := testPattern(t, "Ory")
	_, err = eval.Evaluate(context.Background(), p)
	require.NoError(t, err)
	_, err = eval.Evaluate(context.Background(), p)
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
}

func TestEvalCacheTTLExpiry(t *testing.T) {
	c, err := NewEvalCache(&Config{MaxSize: 4, TTL: 10 * time.Millisecond})
	require.NoError(t, err)

	c.Set("fp", map[string]float64{"cost": 10})
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("fp")
	require.False(t, ok)
}
