package core

import (
	"time"
)

// Component is one named element of an architecture pattern.
type Component struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Origin marks how a variant was produced.
type Origin string

const (
	OriginSeed     Origin = "seed"
	OriginMutation Origin = "mutation"
	OriginDream    Origin = "dream"
)

// Variant is a generation-tagged pattern inside one lineage.
type Variant struct {
	Pattern    Pattern
	LineageID  string
	Generation int
	Origin     Origin
}

// ScoreRecord is an immutable snapshot of a variant's scores at scoring time.
type ScoreRecord struct {
	PatternID   string             `json:"pattern_id"`
	LineageID   string             `json:"lineage_id"`
	Generation  int                `json:"generation"`
	Origin      Origin             `json:"origin"`
	Pillars     map[string]float64 `json:"pillars"`
	Composite   float64            `json:"composite"`
	Underscored bool               `json:"underscored"`
	ScoredAt    time.Time          `json:"scored_at"`
}

// RankingEntry places one finalized lineage in the cross-lineage ranking.
type RankingEntry struct {
	LineageID string  `json:"lineage_id"`
	Composite float64 `json:"composite"`
	Rank      int     `json:"rank"`
}

// ReflectionReport is the qualitative assessment of the selected top variant.
type ReflectionReport struct {
	Summary         string      `json:"summary"`
	Strengths       []string    `json:"strengths"`
	Risks           []string    `json:"risks"`
	OverallEstimate float64     `json:"overall_score_estimate"` // 0-10
	Confidence      float64     `json:"confidence"`             // 0-100
	NextFocus       string      `json:"next_focus"`
	Diff            []DiffEntry `json:"diff"`
	Warnings        []string    `json:"warnings,omitempty"`
}

// SkipNotice records a generation that was skipped after a failed retry.
type SkipNotice struct {
	LineageID  string `json:"lineage_id"`
	Generation int    `json:"generation"`
	Reason     string `json:"reason"`
}

// LineageResult is the finalized outcome of a single lineage.
type LineageResult struct {
	LineageID string        `json:"lineage_id"`
	Best      Variant       `json:"-"`
	BestScore ScoreRecord   `json:"best_score"`
	History   []ScoreRecord `json:"history"`
	Skips     []SkipNotice  `json:"skips,omitempty"`
}

// RunResult is the structured output of one evolution run, handed to the
// report assembler.
type RunResult struct {
	RunID      string          `json:"run_id"`
	Intent     string          `json:"intent"`
	Original   Pattern         `json:"-"`
	Lineages   []LineageResult `json:"lineages"`
	Ranking    []RankingEntry  `json:"ranking"`
	Top        Variant         `json:"-"`
	TopScore   ScoreRecord     `json:"top_score"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// RunSummary is the archivable record of one finalized lineage within a run.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	LineageID string        `json:"lineage_id"`
	Intent    string        `json:"intent"`
	Best      ScoreRecord   `json:"best"`
	History   []ScoreRecord `json:"history"`
	CreatedAt time.Time     `json:"created_at"`
}
