// Package reflector synthesizes the qualitative summary attached to the
// selected top variant of a run. It is a pure function over finalized data:
// no further generation or mutation happens here.
package reflector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loom-forge/weaver/core"
)

// Reflector grounds the judge capability's free-text verdict in the concrete
// structural diff between the original pattern and the top variant.
type Reflector struct {
	judge core.Judge
}

// New creates a reflector around the judge capability.
func New(judge core.Judge) *Reflector {
	return &Reflector{judge: judge}
}

// Reflect produces the reflection report for one finalized run. The
// component diff is computed here rather than trusted from free text, and the
// judge's numeric estimates are clamped into their documented ranges with a
// recorded warning instead of being silently accepted.
func (r *Reflector) Reflect(ctx context.Context, original core.Pattern, top core.Variant, history []core.ScoreRecord) (core.ReflectionReport, error) {
	diff := core.DiffComponents(original, top.Pattern)

	verdict, err := r.judge.Judge(ctx, original, top, history)
	if err != nil {
		return core.ReflectionReport{}, fmt.Errorf("judge capability failed: %w", err)
	}

	report := core.ReflectionReport{
		Summary:   verdict.Summary,
		Strengths: verdict.Strengths,
		Risks:     verdict.Risks,
		NextFocus: verdict.NextFocus,
		Diff:      diff,
	}

	report.OverallEstimate, report.Warnings = clamp(verdict.OverallEstimate, 0, 10, "overall_score_estimate", report.Warnings)
	report.Confidence, report.Warnings = clamp(verdict.Confidence, 0, 100, "confidence", report.Warnings)

	for _, w := range report.Warnings {
		slog.WarnContext(ctx, "judge verdict clamped", "warning", w)
	}
	return report, nil
}

func clamp(v, lo, hi float64, field string, warnings []string) (float64, []string) {
	switch {
	case v < lo:
		return lo, append(warnings, fmt.Sprintf("%s %.2f below %.0f, clamped", field, v, lo))
	case v > hi:
		return hi, append(warnings, fmt.Sprintf("%s %.2f above %.0f, clamped", field, v, hi))
	default:
		return v, warnings
	}
}
