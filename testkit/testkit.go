// Package testkit provides scripted capability implementations and pattern
// builders for tests. The scripted types are deterministic stand-ins for the
// external synthesis and evaluation capabilities.
package testkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/loom-forge/weaver/core"
)

// EcommerceSeed returns the canonical seed pattern used across tests: an
// auth component, a load balancer, and a single security pillar score.
func EcommerceSeed() (core.Pattern, error) {
	return core.NewPattern("seed-ecommerce", []core.Component{
		{Name: "auth", Description: "Ory"},
		{Name: "load_balancer", Description: "HAProxy for reverse proxy"},
	}, map[string]float64{"security": 30})
}

// ScriptedSynthesizer produces deterministic component changes. FailTimes
// makes the first N calls fail, which exercises the controller's retry and
// skip policy.
type ScriptedSynthesizer struct {
	mu        sync.Mutex
	calls     int
	FailTimes int
	FailWith  error
	// Changes overrides the default output when set
	Changes []core.ComponentChange
	// Modes records the mode of every call in order
	Modes []core.Mode
}

// Synthesize returns one revision of the first parent component in mutation
// mode, or one novel component in dream mode.
func (s *ScriptedSynthesizer) Synthesize(ctx context.Context, parent []core.Component, intent string, mode core.Mode) ([]core.ComponentChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.Modes = append(s.Modes, mode)

	if s.calls <= s.FailTimes {
		err := s.FailWith
		if err == nil {
			err = fmt.Errorf("scripted synthesis failure %d", s.calls)
		}
		return nil, err
	}
	if s.Changes != nil {
		return s.Changes, nil
	}

	if mode == core.ModeDream {
		return []core.ComponentChange{{
			Name:        fmt.Sprintf("dreamed_%d", s.calls),
			Description: fmt.Sprintf("novel component for %q", intent),
			Added:       true,
		}}, nil
	}
	return []core.ComponentChange{{
		Name:        parent[0].Name,
		Description: fmt.Sprintf("%s (revised %d for %q)", parent[0].Description, s.calls, intent),
	}}, nil
}

// Calls returns how many times the synthesizer was invoked.
func (s *ScriptedSynthesizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ScriptedEvaluator returns pillar scores from a fixed sequence, repeating
// the last entry once the sequence is exhausted. FailTimes makes the first N
// calls fail.
type ScriptedEvaluator struct {
	mu        sync.Mutex
	calls     int
	FailTimes int
	FailWith  error
	Sequence  []map[string]float64
}

// Evaluate returns the next scripted pillar map.
func (e *ScriptedEvaluator) Evaluate(ctx context.Context, p core.Pattern) (map[string]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++

	if e.calls <= e.FailTimes {
		err := e.FailWith
		if err == nil {
			err = fmt.Errorf("scripted evaluation failure %d", e.calls)
		}
		return nil, err
	}
	if len(e.Sequence) == 0 {
		return map[string]float64{"security": 50}, nil
	}
	idx := e.calls - e.FailTimes - 1
	if idx >= len(e.Sequence) {
		idx = len(e.Sequence) - 1
	}
	out := make(map[string]float64, len(e.Sequence[idx]))
	for k, v := range e.Sequence[idx] {
		out[k] = v
	}
	return out, nil
}

// Calls returns how many times the evaluator was invoked.
func (e *ScriptedEvaluator) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// ScriptedJudge returns a fixed judgement.
type ScriptedJudge struct {
	Verdict core.Judgement
	Err     error
}

// Judge returns the scripted verdict.
func (j *ScriptedJudge) Judge(ctx context.Context, original core.Pattern, top core.Variant, history []core.ScoreRecord) (core.Judgement, error) {
	if j.Err != nil {
		return core.Judgement{}, j.Err
	}
	return j.Verdict, nil
}

// MemoryArchivist collects run summaries in memory for assertions.
type MemoryArchivist struct {
	mu        sync.Mutex
	Summaries []core.RunSummary
	Err       error
}

// Record appends a summary.
func (a *MemoryArchivist) Record(ctx context.Context, summary core.RunSummary) error {
	if a.Err != nil {
		return a.Err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Summaries = append(a.Summaries, summary)
	return nil
}

// Query returns summaries for a lineage.
func (a *MemoryArchivist) Query(ctx context.Context, lineageID string) ([]core.RunSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []core.RunSummary
	for _, s := range a.Summaries {
		if s.LineageID == lineageID {
			out = append(out, s)
		}
	}
	return out, nil
}

// Close is a no-op.
func (a *MemoryArchivist) Close() error { return nil }
