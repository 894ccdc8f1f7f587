package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loom-forge/weaver/core"
)

type scriptedSynth struct {
	changes   []core.ComponentChange
	err       error
	lastMode  core.Mode
	callCount int
}

func (s *scriptedSynth) Synthesize(ctx context.Context, parent []core.Component, intent string, mode core.Mode) ([]core.ComponentChange, error) {
	s.callCount++
	s.lastMode = mode
	if s.err != nil {
		return nil, s.err
	}
	return s.changes, nil
}

func parentVariant(t *testing.T) core.Variant {
	t.Helper()
	p, err := core.NewPattern("seed-1", []core.Component{
		{Name: "auth", Description: "Ory"},
		{Name: "load_balancer", Description: "HAProxy for reverse proxy"},
	}, map[string]float64{"security": 30})
	require.NoError(t, err)
	return core.Variant{Pattern: p, LineageID: "lineage-1", Generation: 3, Origin: core.OriginMutation}
}

func TestGenerateMutationStep(t *testing.T) {
	synth := &scriptedSynth{changes: []core.ComponentChange{
		{Name: "auth", Description: "Ory with strict session TTLs"},
	}}
	// dreamProb 0 forces mutation mode regardless of the draw
	gen := New(synth, 1)

	v, err := gen.Generate(context.Background(), parentVariant(t), "secure ecommerce backend", 0)
	require.NoError(t, err)
	require.Equal(t, core.ModeMutation, synth.lastMode)
	require.Equal(t, core.OriginMutation, v.Origin)
	require.Equal(t, 4, v.Generation)
	require.Equal(t, "lineage-1", v.LineageID)
	require.NotEqual(t, "seed-1", v.Pattern.ID())

	got, ok := v.Pattern.Component("auth")
	require.True(t, ok)
	require.Equal(t, "Ory with strict session TTLs", got.Description)
}

func TestGenerateDreamStepAddsNovelComponent(t *testing.T) {
	synth := &scriptedSynth{changes: []core.ComponentChange{
		{Name: "waf", Description: "ModSecurity at the edge", Added: true},
	}}
	// dreamProb 1 forces dream mode
	gen := New(synth, 1)

	v, err := gen.Generate(context.Background(), parentVariant(t), "secure ecommerce backend", 1)
	require.NoError(t, err)
	require.Equal(t, core.ModeDream, synth.lastMode)
	require.Equal(t, core.OriginDream, v.Origin)
	require.Len(t, v.Pattern.Components(), 3)
}

func TestGenerateDreamWithoutNoveltyFails(t *testing.T) {
	synth := &scriptedSynth{changes: []core.ComponentChange{
		{Name: "auth", Description: "tweaked"},
	}}
	gen := New(synth, 1)

	_, err := gen.Generate(context.Background(), parentVariant(t), "intent", 1)
	require.True(t, core.IsGeneration(err))
}

func TestGenerateSynthFailureWrapsGenerationError(t *testing.T) {
	synth := &scriptedSynth{err: errors.New("capability unreachable")}
	gen := New(synth, 1)

	_, err := gen.Generate(context.Background(), parentVariant(t), "intent", 0)
	require.True(t, core.IsGeneration(err))
}

func TestGenerateEmptyChangesFails(t *testing.T) {
	synth := &scriptedSynth{changes: nil}
	gen := New(synth, 1)

	_, err := gen.Generate(context.Background(), parentVariant(t), "intent", 0)
	require.True(t, core.IsGeneration(err))
}

func TestGenerateRejectsUnknownReplacementAsAdd(t *testing.T) {
	// a change naming an unknown component without Added is treated as an
	// extension, which still yields a valid offspring
	synth := &scriptedSynth{changes: []core.ComponentChange{
		{Name: "cache", Description: "Redis read-through"},
	}}
	gen := New(synth, 1)

	v, err := gen.Generate(context.Background(), parentVariant(t), "intent", 0)
	require.NoError(t, err)
	require.Len(t, v.Pattern.Components(), 3)
}

func TestGenerateInvalidDreamProbability(t *testing.T) {
	gen := New(&scriptedSynth{}, 1)
	_, err := gen.Generate(context.Background(), parentVariant(t), "intent", 1.5)
	require.True(t, core.IsValidation(err))
}

func TestGenerateDrawIsSeeded(t *testing.T) {
	mk := func() []core.Origin {
		synth := &scriptedSynth{changes: []core.ComponentChange{
			{Name: "waf", Description: "edge filter", Added: true},
		}}
		gen := New(synth, 42)
		parent := parentVariant(t)
		origins := make([]core.Origin, 0, 8)
		for i := 0; i < 8; i++ {
			v, err := gen.Generate(context.Background(), parent, "intent", 0.5)
			if err != nil {
				// dream without novelty cannot happen here; mutation adding a
				// component is fine either way
				t.Fatalf("unexpected error: %v", err)
			}
			origins = append(origins, v.Origin)
		}
		return origins
	}

	require.Equal(t, mk(), mk(), "same seed must reproduce the same dream draws")
}

func TestGenerateNeverEmptiesComponentSet(t *testing.T) {
	synth := &scriptedSynth{changes: []core.ComponentChange{
		{Name: "auth", Description: "revised"},
	}}
	gen := New(synth, 7)

	v, err := gen.Generate(context.Background(), parentVariant(t), "intent", 0)
	require.NoError(t, err)
	require.NotEmpty(t, v.Pattern.Components())
}
