package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loom-forge/weaver/core"
	"github.com/loom-forge/weaver/testkit"
)

func TestOfflineSynthesizeMutationIsDeterministic(t *testing.T) {
	seed, err := testkit.EcommerceSeed()
	require.NoError(t, err)

	o := NewOffline()
	first, err := o.Synthesize(context.Background(), seed.Components(), "secure backend", core.ModeMutation)
	require.NoError(t, err)
	second, err := o.Synthesize(context.Background(), seed.Components(), "secure backend", core.ModeMutation)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first, 1)
	require.False(t, first[0].Added)

	_, exists := seed.Component(first[0].Name)
	require.True(t, exists)
	require.NotEqual(t, "", first[0].Description)
}

func TestOfflineSynthesizeDreamIntroducesNovelComponent(t *testing.T) {
	seed, err := testkit.EcommerceSeed()
	require.NoError(t, err)

	o := NewOffline()
	changes, err := o.Synthesize(context.Background(), seed.Components(), "secure backend", core.ModeDream)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.True(t, changes[0].Added)

	_, exists := seed.Component(changes[0].Name)
	require.False(t, exists)
}

func TestOfflineSynthesizeDreamExhaustedCandidates(t *testing.T) {
	seed, err := testkit.EcommerceSeed()
	require.NoError(t, err)
	for _, cand := range dreamCandidates {
		seed, err = seed.WithComponentAdded(cand.Name, cand.Description)
		require.NoError(t, err)
	}

	o := NewOffline()
	changes, err := o.Synthesize(context.Background(), seed.Components(), "secure backend", core.ModeDream)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.True(t, changes[0].Added)

	_, exists := seed.Component(changes[0].Name)
	require.False(t, exists)
}

func TestOfflineSynthesizeEmptyParent(t *testing.T) {
	o := NewOffline()
	_, err := o.Synthesize(context.Background(), nil, "intent", core.ModeMutation)
	require.Error(t, err)
}

func TestOfflineEvaluateInRangeAndDeterministic(t *testing.T) {
	seed, err := testkit.EcommerceSeed()
	require.NoError(t, err)

	o := NewOffline()
	first, err := o.Evaluate(context.Background(), seed)
	require.NoError(t, err)
	second, err := o.Evaluate(context.Background(), seed)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first, 4)
	for pillar, score := range first {
		require.GreaterOrEqual(t, score, 0.0, pillar)
		require.LessOrEqual(t, score, 100.0, pillar)
	}
}

func TestOfflineEvaluateRewardsSecurityComponents(t *testing.T) {
	seed, err := testkit.EcommerceSeed()
	require.NoError(t, err)
	hardened, err := seed.WithComponentAdded("waf", "web application firewall with TLS termination and auth offload")
	require.NoError(t, err)

	o := NewOffline()
	before, err := o.Evaluate(context.Background(), seed)
	require.NoError(t, err)
	after, err := o.Evaluate(context.Background(), hardened)
	require.NoError(t, err)

	// the added keywords contribute at least +24, within the baseline spread
	require.Greater(t, after["security"], before["security"]-7)
	require.GreaterOrEqual(t, after["security"], 54.0)
}

func TestOfflineJudgeSummarizesDiff(t *testing.T) {
	seed, err := testkit.EcommerceSeed()
	require.NoError(t, err)
	top, err := seed.WithComponentAdded("waf", "web application firewall")
	require.NoError(t, err)
	top, err = top.WithComponentReplaced("auth", "Ory with MFA")
	require.NoError(t, err)
	top, err = top.WithID("top")
	require.NoError(t, err)

	o := NewOffline()
	verdict, err := o.Judge(context.Background(), seed, core.Variant{Pattern: top, LineageID: "L01", Generation: 3, Origin: core.OriginDream}, nil)
	require.NoError(t, err)

	require.Contains(t, verdict.Summary, "1 components refined, 1 introduced")
	require.Len(t, verdict.Strengths, 2)
	require.GreaterOrEqual(t, verdict.OverallEstimate, 0.0)
	require.LessOrEqual(t, verdict.OverallEstimate, 10.0)
	require.GreaterOrEqual(t, verdict.Confidence, 0.0)
	require.LessOrEqual(t, verdict.Confidence, 100.0)
}
