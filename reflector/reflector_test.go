package reflector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loom-forge/weaver/core"
	"github.com/loom-forge/weaver/testkit"
)

func fixtures(t *testing.T) (core.Pattern, core.Variant) {
	t.Helper()
	original, err := testkit.EcommerceSeed()
	require.NoError(t, err)

	topPattern, err := original.WithComponentReplaced("auth", "Ory with MFA enforced")
	require.NoError(t, err)
	topPattern, err = topPattern.WithComponentAdded("waf", "ModSecurity at the edge")
	require.NoError(t, err)
	topPattern, err = topPattern.WithID("top-1")
	require.NoError(t, err)

	return original, core.Variant{Pattern: topPattern, LineageID: "L01", Generation: 3, Origin: core.OriginDream}
}

func TestReflectGroundsDiff(t *testing.T) {
	original, top := fixtures(t)
	judge := &testkit.ScriptedJudge{Verdict: core.Judgement{
		Summary:         "stronger perimeter",
		Strengths:       []string{"MFA on auth"},
		Risks:           []string{"WAF tuning effort"},
		OverallEstimate: 7.5,
		Confidence:      80,
		NextFocus:       "harden session storage",
	}}

	r := New(judge)
	report, err := r.Reflect(context.Background(), original, top, nil)
	require.NoError(t, err)

	require.Equal(t, "stronger perimeter", report.Summary)
	require.Equal(t, 7.5, report.OverallEstimate)
	require.Equal(t, 80.0, report.Confidence)
	require.Empty(t, report.Warnings)

	kinds := map[core.DiffKind]int{}
	for _, e := range report.Diff {
		kinds[e.Kind]++
	}
	require.Equal(t, 1, kinds[core.DiffChanged])
	require.Equal(t, 1, kinds[core.DiffAdded])
	require.Equal(t, 1, kinds[core.DiffUnchanged])
}

func TestReflectClampsOutOfRangeVerdict(t *testing.T) {
	original, top := fixtures(t)
	judge := &testkit.ScriptedJudge{Verdict: core.Judgement{
		OverallEstimate: 14,
		Confidence:      -5,
	}}

	r := New(judge)
	report, err := r.Reflect(context.Background(), original, top, nil)
	require.NoError(t, err)

	require.Equal(t, 10.0, report.OverallEstimate)
	require.Equal(t, 0.0, report.Confidence)
	require.Len(t, report.Warnings, 2)
}

func TestReflectPropagatesJudgeFailure(t *testing.T) {
	original, top := fixtures(t)
	judge := &testkit.ScriptedJudge{Err: errors.New("capability timeout")}

	r := New(judge)
	_, err := r.Reflect(context.Background(), original, top, nil)
	require.Error(t, err)
}

func TestReflectIsPure(t *testing.T) {
	original, top := fixtures(t)
	judge := &testkit.ScriptedJudge{Verdict: core.Judgement{Summary: "s", OverallEstimate: 5, Confidence: 50}}
	r := New(judge)

	first, err := r.Reflect(context.Background(), original, top, nil)
	require.NoError(t, err)
	second, err := r.Reflect(context.Background(), original, top, nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
	// inputs untouched
	auth, ok := original.Component("auth")
	require.True(t, ok)
	require.Equal(t, "Ory", auth.Description)
}
