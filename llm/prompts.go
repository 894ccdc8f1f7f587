package llm

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/loom-forge/weaver/core"
)

type synthesisResponse struct {
	Changes []core.ComponentChange `json:"changes"`
}

type evaluationResponse struct {
	Pillars map[string]float64 `json:"pillars"`
}

func synthesisSystemPrompt(mode core.Mode) string {
	base := `You are an architecture pattern designer. You revise software
architecture patterns toward a stated intent. Respond with JSON only:
{"changes": [{"name": "...", "description": "...", "added": false}]}
Each change either revises an existing component (added=false, name must match
an existing component) or introduces a new one (added=true, name must not
exist yet). Never propose removing a component.`

	if mode == core.ModeDream {
		return base + `
This is a dream step: propose at least one bold, unconventional component
that is absent from the current pattern. Plausibility matters less than
novelty.`
	}
	return base + `
This is a mutation step: make small, conservative revisions to existing
components. Do not introduce new components unless strictly necessary.`
}

func synthesisUserPrompt(parent []core.Component, intent string, mode core.Mode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intent: %s\n\nCurrent pattern components:\n", intent)
	for _, comp := range parent {
		fmt.Fprintf(&b, "- %s: %s\n", comp.Name, comp.Description)
	}
	fmt.Fprintf(&b, "\nMode: %s\n", mode)
	return b.String()
}

const evaluationSystemPrompt = `You are an architecture reviewer. Score the
given pattern on quality pillars such as security, scalability, cost, and
maintainability. Every score is a number from 0 to 100. Respond with JSON
only: {"pillars": {"security": 0, "scalability": 0, "cost": 0,
"maintainability": 0}}`

func evaluationUserPrompt(p core.Pattern) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pattern %s components:\n", p.ID())
	for _, comp := range p.Components() {
		fmt.Fprintf(&b, "- %s: %s\n", comp.Name, comp.Description)
	}
	return b.String()
}

const judgeSystemPrompt = `You are an architecture reviewer summarizing the
outcome of an iterative refinement run. Compare the original pattern with the
final one and respond with JSON only:
{"summary": "...", "strengths": ["..."], "risks": ["..."],
"overall_score_estimate": 0, "confidence": 0, "next_focus": "..."}
overall_score_estimate is 0-10; confidence is 0-100.`

func judgeUserPrompt(original core.Pattern, top core.Variant, history []core.ScoreRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original pattern:\n")
	for _, comp := range original.Components() {
		fmt.Fprintf(&b, "- %s: %s\n", comp.Name, comp.Description)
	}
	fmt.Fprintf(&b, "\nFinal pattern (generation %d, origin %s):\n", top.Generation, top.Origin)
	for _, comp := range top.Pattern.Components() {
		fmt.Fprintf(&b, "- %s: %s\n", comp.Name, comp.Description)
	}
	if len(history) > 0 {
		fmt.Fprintf(&b, "\nComposite score trajectory:")
		for _, rec := range history {
			fmt.Fprintf(&b, " %.1f", rec.Composite)
		}
		fmt.Fprintf(&b, "\n")
	}
	return b.String()
}

// extractJSON strips Markdown code fences some models wrap around JSON
// despite the response format instruction.
func extractJSON(raw string) []byte {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return bytes.TrimSpace([]byte(s))
}
