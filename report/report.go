// Package report renders finalized run data into a Markdown artifact. It is
// pure formatting: scores, rankings, and diffs arrive computed and are never
// re-derived here.
package report

import (
	"fmt"
	"strings"

	"github.com/loom-forge/weaver/core"
)

// markers for diff table rows
var diffMarkers = map[core.DiffKind]string{
	core.DiffAdded:     "+",
	core.DiffChanged:   "~",
	core.DiffRemoved:   "-",
	core.DiffUnchanged: "",
}

// Assembler renders evolution run artifacts.
type Assembler struct{}

// New creates a report assembler.
func New() *Assembler {
	return &Assembler{}
}

// Render produces the deterministic Markdown report for one run: the ranking
// table ordered by rank ascending, the component and pillar diff tables, the
// reflection verbatim, and any skip notices.
func (a *Assembler) Render(result core.RunResult, reflection core.ReflectionReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Evolution Report\n\n")
	fmt.Fprintf(&b, "Intent: %s\n\n", result.Intent)
	fmt.Fprintf(&b, "Run: %s\n\n", result.RunID)

	a.renderRanking(&b, result.Ranking)
	a.renderComponentDiff(&b, reflection.Diff)
	a.renderPillarDiff(&b, result)
	a.renderReflection(&b, reflection)
	a.renderSkips(&b, result.Lineages)

	return b.String()
}

func (a *Assembler) renderRanking(b *strings.Builder, ranking []core.RankingEntry) {
	fmt.Fprintf(b, "## Ranking\n\n")
	fmt.Fprintf(b, "| Rank | Lineage | Composite |\n")
	fmt.Fprintf(b, "|------|---------|-----------|\n")
	for _, entry := range ranking {
		fmt.Fprintf(b, "| %d | %s | %.2f |\n", entry.Rank, entry.LineageID, entry.Composite)
	}
	fmt.Fprintf(b, "\n")
}

func (a *Assembler) renderComponentDiff(b *strings.Builder, diff []core.DiffEntry) {
	fmt.Fprintf(b, "## Component Diff\n\n")
	fmt.Fprintf(b, "| | Component | Before | After |\n")
	fmt.Fprintf(b, "|---|-----------|--------|-------|\n")
	for _, e := range diff {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", diffMarkers[e.Kind], e.Name, e.Before, e.After)
	}
	fmt.Fprintf(b, "\n")
}

// renderPillarDiff compares the top lineage's first and best score records.
func (a *Assembler) renderPillarDiff(b *strings.Builder, result core.RunResult) {
	var before map[string]float64
	for _, lin := range result.Lineages {
		if lin.LineageID == result.TopScore.LineageID && len(lin.History) > 0 {
			before = lin.History[0].Pillars
			break
		}
	}
	deltas := core.DiffPillars(before, result.TopScore.Pillars)
	if len(deltas) == 0 {
		return
	}

	fmt.Fprintf(b, "## Pillar Scores\n\n")
	fmt.Fprintf(b, "| Pillar | Before | After |\n")
	fmt.Fprintf(b, "|--------|--------|-------|\n")
	for _, d := range deltas {
		fmt.Fprintf(b, "| %s | %.2f | %.2f |\n", d.Name, d.Before, d.After)
	}
	fmt.Fprintf(b, "\n")
}

func (a *Assembler) renderReflection(b *strings.Builder, reflection core.ReflectionReport) {
	fmt.Fprintf(b, "## Reflection\n\n")
	if reflection.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", reflection.Summary)
	}

	if len(reflection.Strengths) > 0 {
		fmt.Fprintf(b, "Strengths:\n\n")
		for _, s := range reflection.Strengths {
			fmt.Fprintf(b, "- %s\n", s)
		}
		fmt.Fprintf(b, "\n")
	}
	if len(reflection.Risks) > 0 {
		fmt.Fprintf(b, "Risks:\n\n")
		for _, r := range reflection.Risks {
			fmt.Fprintf(b, "- %s\n", r)
		}
		fmt.Fprintf(b, "\n")
	}

	fmt.Fprintf(b, "Overall estimate: %.1f/10\n\n", reflection.OverallEstimate)
	fmt.Fprintf(b, "Confidence: %.0f%%\n\n", reflection.Confidence)
	if reflection.NextFocus != "" {
		fmt.Fprintf(b, "Next focus: %s\n\n", reflection.NextFocus)
	}

	if len(reflection.Warnings) > 0 {
		fmt.Fprintf(b, "Warnings:\n\n")
		for _, w := range reflection.Warnings {
			fmt.Fprintf(b, "- %s\n", w)
		}
		fmt.Fprintf(b, "\n")
	}
}

func (a *Assembler) renderSkips(b *strings.Builder, lineages []core.LineageResult) {
	var skips []core.SkipNotice
	for _, lin := range lineages {
		skips = append(skips, lin.Skips...)
	}
	if len(skips) == 0 {
		return
	}

	fmt.Fprintf(b, "## Skipped Generations\n\n")
	for _, s := range skips {
		fmt.Fprintf(b, "- %s generation %d: %s\n", s.LineageID, s.Generation, s.Reason)
	}
	fmt.Fprintf(b, "\n")
}
