package core

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// MeanScorer computes composite scores as the mean of pillar scores. With no
// declared weights every present pillar counts equally; declared weights turn
// the mean into a weighted one. Patterns arriving without pillar scores are
// evaluated through the external capability first.
type MeanScorer struct {
	Eval    Evaluator
	Weights map[string]float64 // optional; empty means unweighted
	Clock   func() time.Time   // test seam; defaults to time.Now
}

// NewMeanScorer builds a scorer around the given evaluation capability.
func NewMeanScorer(eval Evaluator, weights map[string]float64) *MeanScorer {
	return &MeanScorer{Eval: eval, Weights: weights}
}

// Score validates the variant's pillar scores, delegating to the evaluation
// capability when none are present, and derives the composite. The result is
// deterministic for identical pillar inputs: pillars are folded in sorted
// order and no randomness is involved.
func (s *MeanScorer) Score(ctx context.Context, v Variant) (ScoreRecord, error) {
	pillars := v.Pattern.Pillars()

	if len(pillars) == 0 && s.Eval != nil {
		evaluated, err := s.Eval.Evaluate(ctx, v.Pattern)
		if err != nil {
			return ScoreRecord{}, &ScoringError{PatternID: v.Pattern.ID(), Err: err}
		}
		for name, score := range evaluated {
			if score < 0 || score > 100 {
				return ScoreRecord{}, &ScoringError{
					PatternID: v.Pattern.ID(),
					Err:       fmt.Errorf("evaluator returned %s=%.2f outside [0,100]", name, score),
				}
			}
			pillars[name] = score
		}
	}

	rec := ScoreRecord{
		PatternID:  v.Pattern.ID(),
		LineageID:  v.LineageID,
		Generation: v.Generation,
		Origin:     v.Origin,
		Pillars:    pillars,
		Composite:  Composite(pillars, s.Weights),
		ScoredAt:   s.now(),
	}
	if len(pillars) == 0 {
		rec.Underscored = true
	}
	return rec, nil
}

func (s *MeanScorer) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

// Composite aggregates pillar scores into one fitness value. An empty pillar
// map yields 0. Weights missing for a pillar default to 1, so an empty weight
// map is the documented unweighted mean.
func Composite(pillars map[string]float64, weights map[string]float64) float64 {
	if len(pillars) == 0 {
		return 0
	}
	names := make([]string, 0, len(pillars))
	for name := range pillars {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum, weightSum float64
	for _, name := range names {
		w := 1.0
		if weights != nil {
			if dw, ok := weights[name]; ok {
				w = dw
			}
		}
		sum += w * pillars[name]
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}
