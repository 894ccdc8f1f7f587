// Package evolve drives evolution runs: per-lineage generate/score/select
// loops, cross-lineage ranking, and run finalization.
package evolve

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/loom-forge/weaver/core"
	"github.com/loom-forge/weaver/generator"
	"github.com/loom-forge/weaver/pkg/logging"
	"github.com/loom-forge/weaver/pkg/metrics"
)

// LineageState tracks where a lineage is in its lifecycle.
type LineageState string

const (
	StateSeeded     LineageState = "SEEDED"
	StateGenerating LineageState = "GENERATING"
	StateScored     LineageState = "SCORED"
	StateFinalized  LineageState = "FINALIZED"
)

// Options configure a single evolution run.
type Options struct {
	Intent     string
	Iterations int     // K, offspring per lineage
	Lineages   int     // independent lineages when a single seed is given
	DreamProb  float64 // probability of a dream step per generation
}

// Controller owns the full lifecycle of variants within a run. Lineages are
// independent and evaluated in parallel; within a lineage iterations are
// strictly sequential.
type Controller struct {
	Generator *generator.Generator
	Scorer    core.Scorer
	Archivist core.Archivist             // optional
	Metrics   *metrics.PrometheusMetrics // optional
	Logger    *logging.Logger            // optional, defaults to the slog default
}

// NewController wires a controller from its collaborators.
func NewController(gen *generator.Generator, scorer core.Scorer) *Controller {
	return &Controller{Generator: gen, Scorer: scorer}
}

func (c *Controller) logger() *logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.Default()
}

// Run evolves the given seeds for opts.Iterations generations per lineage and
// returns the finalized ranking plus the global top variant. A single seed is
// fanned out into opts.Lineages independent lineages. The run degrades rather
// than aborts: failures inside one lineage never touch its siblings, and
// cancellation finalizes each lineage with its best variant found so far.
func (c *Controller) Run(ctx context.Context, seeds []core.Pattern, opts Options) (core.RunResult, error) {
	started := time.Now().UTC()

	if err := validateOptions(opts); err != nil {
		return core.RunResult{}, err
	}
	if len(seeds) == 0 {
		return core.RunResult{}, &core.ValidationError{Field: "seeds", Reason: "at least one seed pattern is required"}
	}
	for _, seed := range seeds {
		if len(seed.Components()) == 0 {
			return core.RunResult{}, &core.ValidationError{Field: "seeds", Reason: "seed pattern has no components"}
		}
	}

	runID := uuid.NewString()
	lineageSeeds := fanOut(seeds, opts.Lineages)

	runLog := c.logger().WithRunID(runID)
	runLog.Info("run started",
		"intent", opts.Intent,
		"lineages", len(lineageSeeds),
		"iterations", opts.Iterations,
		"dream_probability", opts.DreamProb,
	)

	results := make([]*core.LineageResult, len(lineageSeeds))
	lineageSeedPatterns := make([]core.Pattern, len(lineageSeeds))

	g, gctx := errgroup.WithContext(ctx)
	for i, seed := range lineageSeeds {
		i, seed := i, seed
		lineageID := fmt.Sprintf("L%02d", i+1)
		lineageSeedPatterns[i] = seed
		g.Go(func() error {
			// lineage failures degrade the run, they never abort siblings
			results[i] = c.runLineage(gctx, runLog, lineageID, seed, opts)
			return nil
		})
	}
	_ = g.Wait()

	finalized := make([]core.LineageResult, 0, len(results))
	topSeedByLineage := make(map[string]core.Pattern, len(results))
	for i, res := range results {
		if res == nil {
			continue
		}
		finalized = append(finalized, *res)
		topSeedByLineage[res.LineageID] = lineageSeedPatterns[i]
	}

	ranking, ranked := rank(finalized)
	if len(ranking) == 0 {
		if c.Metrics != nil {
			c.Metrics.RecordRun("failed", time.Since(started))
		}
		return core.RunResult{}, fmt.Errorf("run %s produced no scored variant in any lineage", runID)
	}

	top := ranked[ranking[0].LineageID]

	result := core.RunResult{
		RunID:      runID,
		Intent:     opts.Intent,
		Original:   topSeedByLineage[ranking[0].LineageID],
		Lineages:   finalized,
		Ranking:    ranking,
		Top:        top.Best,
		TopScore:   top.BestScore,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}

	c.archive(ctx, result)

	if c.Metrics != nil {
		c.Metrics.RecordRun("complete", time.Since(started))
	}
	runLog.Info("run finished",
		"top_lineage", ranking[0].LineageID,
		"top_composite", ranking[0].Composite,
	)
	return result, nil
}

// runLineage executes the SEEDED -> (GENERATING -> SCORED)* -> FINALIZED
// state machine for one lineage. It returns nil only when the lineage never
// produced a single scored variant.
func (c *Controller) runLineage(ctx context.Context, runLog *logging.Logger, lineageID string, seed core.Pattern, opts Options) *core.LineageResult {
	state := StateSeeded
	log := runLog.WithLineage(lineageID)
	log.Debug("lineage state", "state", string(state))

	seedVariant := core.Variant{
		Pattern:    seed,
		LineageID:  lineageID,
		Generation: 0,
		Origin:     core.OriginSeed,
	}

	res := &core.LineageResult{LineageID: lineageID}

	seedScore, err := c.scoreWithRetry(ctx, seedVariant)
	if err != nil {
		log.Warn("seed scoring failed, lineage unusable", "error", err)
		return nil
	}
	if seedScore.Underscored {
		log.Warn("seed pattern has no pillar scores, composite defaults to 0")
	}

	best := seedVariant
	bestScore := seedScore
	res.History = append(res.History, seedScore)

	for i := 1; i <= opts.Iterations; i++ {
		if ctx.Err() != nil {
			// abandoned iterations still finalize with the best found so far
			reason := "run cancelled: " + ctx.Err().Error()
			log.LogSkip(lineageID, i, reason)
			res.Skips = append(res.Skips, core.SkipNotice{
				LineageID:  lineageID,
				Generation: i,
				Reason:     reason,
			})
			break
		}

		state = StateGenerating
		log.Debug("lineage state", "state", string(state), "generation", i)
		offspring, err := c.generateWithRetry(ctx, best, opts)
		if err != nil {
			reason := "generation failed twice: " + err.Error()
			log.LogSkip(lineageID, i, reason)
			res.Skips = append(res.Skips, core.SkipNotice{
				LineageID:  lineageID,
				Generation: i,
				Reason:     reason,
			})
			if c.Metrics != nil {
				c.Metrics.RecordSkip("generation_failed")
			}
			continue
		}

		score, err := c.scoreWithRetry(ctx, offspring)
		if err != nil {
			// an unscoreable offspring is discarded, never promoted
			reason := "scoring failed twice: " + err.Error()
			log.LogSkip(lineageID, i, reason)
			res.Skips = append(res.Skips, core.SkipNotice{
				LineageID:  lineageID,
				Generation: i,
				Reason:     reason,
			})
			if c.Metrics != nil {
				c.Metrics.RecordSkip("scoring_failed")
			}
			continue
		}
		state = StateScored
		log.Debug("lineage state", "state", string(state), "generation", i)

		res.History = append(res.History, score)

		// ties favor the newer generation so exploration can surface newer
		// structures
		promoted := score.Composite >= bestScore.Composite
		if promoted {
			best = offspring
			bestScore = score
		}
		if c.Metrics != nil {
			c.Metrics.RecordGeneration(string(score.Origin), promoted)
		}
		log.LogGeneration(lineageID, offspring.Generation, string(offspring.Origin), score.Composite, promoted)
	}

	state = StateFinalized
	res.Best = best
	res.BestScore = bestScore

	if c.Metrics != nil {
		c.Metrics.RecordLineage(lineageID, bestScore.Composite)
	}
	log.Info("lineage finalized",
		"state", string(state),
		"best_generation", best.Generation,
		"best_composite", bestScore.Composite,
		"history_len", len(res.History),
		"skips", len(res.Skips),
	)
	return res
}

// generateWithRetry retries a failed generation once with the same parent.
func (c *Controller) generateWithRetry(ctx context.Context, parent core.Variant, opts Options) (core.Variant, error) {
	offspring, err := c.Generator.Generate(ctx, parent, opts.Intent, opts.DreamProb)
	if err == nil {
		return offspring, nil
	}
	if !core.IsGeneration(err) {
		return core.Variant{}, err
	}
	if c.Metrics != nil {
		c.Metrics.RecordRetry("synthesis")
	}
	return c.Generator.Generate(ctx, parent, opts.Intent, opts.DreamProb)
}

// scoreWithRetry retries a failed scoring once.
func (c *Controller) scoreWithRetry(ctx context.Context, v core.Variant) (core.ScoreRecord, error) {
	rec, err := c.Scorer.Score(ctx, v)
	if err == nil {
		return rec, nil
	}
	if !core.IsScoring(err) {
		return core.ScoreRecord{}, err
	}
	if c.Metrics != nil {
		c.Metrics.RecordRetry("evaluation")
	}
	return c.Scorer.Score(ctx, v)
}

// archive records one summary per finalized lineage. Archivist failures are
// logged, not fatal.
func (c *Controller) archive(ctx context.Context, result core.RunResult) {
	if c.Archivist == nil {
		return
	}
	for _, lin := range result.Lineages {
		summary := core.RunSummary{
			RunID:     result.RunID,
			LineageID: lin.LineageID,
			Intent:    result.Intent,
			Best:      lin.BestScore,
			History:   lin.History,
			CreatedAt: result.FinishedAt,
		}
		if err := c.Archivist.Record(ctx, summary); err != nil {
			c.logger().Warn("archivist record failed", "run_id", result.RunID, "lineage_id", lin.LineageID, "error", err)
		}
	}
}

// rank orders finalized lineages by composite score descending, ties broken
// by ascending lineage id. Ranks are assigned 1..N with no gaps.
func rank(lineages []core.LineageResult) ([]core.RankingEntry, map[string]core.LineageResult) {
	byID := make(map[string]core.LineageResult, len(lineages))
	entries := make([]core.RankingEntry, 0, len(lineages))
	for _, lin := range lineages {
		byID[lin.LineageID] = lin
		entries = append(entries, core.RankingEntry{
			LineageID: lin.LineageID,
			Composite: lin.BestScore.Composite,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Composite != entries[j].Composite {
			return entries[i].Composite > entries[j].Composite
		}
		return entries[i].LineageID < entries[j].LineageID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, byID
}

// fanOut replicates a single seed into n lineages; multiple seeds map to one
// lineage each.
func fanOut(seeds []core.Pattern, n int) []core.Pattern {
	if len(seeds) > 1 || n <= 1 {
		return seeds
	}
	out := make([]core.Pattern, n)
	for i := range out {
		out[i] = seeds[0]
	}
	return out
}

func validateOptions(opts Options) error {
	if opts.Intent == "" {
		return &core.ValidationError{Field: "intent", Reason: "must not be empty"}
	}
	if opts.Iterations < 0 {
		return &core.ValidationError{Field: "iterations", Reason: "must not be negative"}
	}
	if opts.Lineages < 1 {
		return &core.ValidationError{Field: "lineages", Reason: "must be positive"}
	}
	if opts.DreamProb < 0 || opts.DreamProb > 1 {
		return &core.ValidationError{Field: "dream_probability", Reason: "must lie in [0,1]"}
	}
	return nil
}
