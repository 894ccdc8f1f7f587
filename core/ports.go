package core

import "context"

// Mode selects how the synthesis capability should change a pattern.
type Mode string

const (
	ModeMutation Mode = "mutation"
	ModeDream    Mode = "dream"
)

// ComponentChange is one edit proposed by the synthesis capability.
type ComponentChange struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Added       bool   `json:"added"`
}

// Synthesizer is the opaque content-synthesis capability. In mutation mode it
// revises existing components toward the intent; in dream mode it proposes a
// novel component absent from the parent.
type Synthesizer interface {
	Synthesize(ctx context.Context, parent []Component, intent string, mode Mode) ([]ComponentChange, error)
}

// Evaluator is the numeric judgment capability: pillar name -> score in [0,100].
type Evaluator interface {
	Evaluate(ctx context.Context, p Pattern) (map[string]float64, error)
}

// Judgement is the raw qualitative verdict returned by the judge capability,
// before the reflector validates and clamps it.
type Judgement struct {
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Risks           []string `json:"risks"`
	OverallEstimate float64  `json:"overall_score_estimate"`
	Confidence      float64  `json:"confidence"`
	NextFocus       string   `json:"next_focus"`
}

// Judge produces a qualitative verdict on the selected top variant.
type Judge interface {
	Judge(ctx context.Context, original Pattern, top Variant, history []ScoreRecord) (Judgement, error)
}

// Archivist is the append-only history store for past runs.
type Archivist interface {
	Record(ctx context.Context, summary RunSummary) error
	Query(ctx context.Context, lineageID string) ([]RunSummary, error)
	Close() error
}

// Scorer derives a score record for a pattern.
type Scorer interface {
	Score(ctx context.Context, v Variant) (ScoreRecord, error)
}
