package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/loom-forge/weaver/core"
)

// Offline serves the three capabilities without a network. Answers are
// derived from content hashes and keyword heuristics, so identical inputs
// always produce identical outputs and runs are fully reproducible.
type Offline struct{}

// NewOffline creates the deterministic offline capability client.
func NewOffline() *Offline {
	return &Offline{}
}

// dreamCandidates are the novel components the offline synthesizer can
// introduce, tried in order.
var dreamCandidates = []core.ComponentChange{
	{Name: "edge_cache", Description: "CDN edge cache for static assets", Added: true},
	{Name: "message_queue", Description: "asynchronous message queue decoupling services", Added: true},
	{Name: "waf", Description: "web application firewall at the ingress", Added: true},
	{Name: "tracing", Description: "distributed tracing across service boundaries", Added: true},
	{Name: "secrets_vault", Description: "central secrets vault with rotation", Added: true},
	{Name: "read_replica", Description: "read replica tier for query offload", Added: true},
}

var refinements = []string{
	"hardened with mutual TLS",
	"tuned for horizontal scaling",
	"instrumented with structured logging",
	"sized against measured load",
}

// Synthesize revises one existing component in mutation mode, or introduces
// the first dream candidate absent from the parent in dream mode.
func (o *Offline) Synthesize(_ context.Context, parent []core.Component, intent string, mode core.Mode) ([]core.ComponentChange, error) {
	if len(parent) == 0 {
		return nil, fmt.Errorf("offline synthesis needs at least one parent component")
	}

	if mode == core.ModeDream {
		present := make(map[string]bool, len(parent))
		for _, comp := range parent {
			present[comp.Name] = true
		}
		for _, cand := range dreamCandidates {
			if !present[cand.Name] {
				return []core.ComponentChange{cand}, nil
			}
		}
		n := len(parent)
		return []core.ComponentChange{{
			Name:        fmt.Sprintf("layer_%02d", n),
			Description: fmt.Sprintf("additional abstraction layer serving %q", intent),
			Added:       true,
		}}, nil
	}

	h := contentHash(parent, intent)
	target := parent[int(h%uint32(len(parent)))]
	refinement := refinements[int(h/7)%len(refinements)]

	desc := target.Description
	if !strings.Contains(desc, refinement) {
		desc = desc + ", " + refinement
	}
	return []core.ComponentChange{{Name: target.Name, Description: desc}}, nil
}

// pillarKeywords reward components that mention techniques relevant to each
// pillar, so offline evolution responds to structural changes instead of
// wandering randomly.
var pillarKeywords = map[string][]string{
	"security":        {"mfa", "waf", "tls", "vault", "auth", "firewall", "encrypt"},
	"scalability":     {"cache", "queue", "shard", "load", "replica", "cdn", "horizontal"},
	"cost":            {"serverless", "spot", "autoscal", "tiered", "cdn"},
	"maintainability": {"logging", "tracing", "modular", "structured", "observ"},
}

// Evaluate scores the four default pillars from a content hash baseline plus
// keyword bonuses, always inside [0,100].
func (o *Offline) Evaluate(_ context.Context, p core.Pattern) (map[string]float64, error) {
	comps := p.Components()
	text := strings.ToLower(flatten(comps))

	pillars := make(map[string]float64, len(pillarKeywords))
	for pillar, keywords := range pillarKeywords {
		h := fnv.New32a()
		h.Write([]byte(pillar))
		h.Write([]byte(text))
		score := 30 + float64(h.Sum32()%31) // baseline in [30,60]

		for _, kw := range keywords {
			score += 6 * float64(strings.Count(text, kw))
		}
		if score > 100 {
			score = 100
		}
		pillars[pillar] = score
	}
	return pillars, nil
}

// Judge derives a verdict from the structural diff alone.
func (o *Offline) Judge(_ context.Context, original core.Pattern, top core.Variant, history []core.ScoreRecord) (core.Judgement, error) {
	diff := core.DiffComponents(original, top.Pattern)

	var strengths []string
	var changed, added int
	for _, e := range diff {
		switch e.Kind {
		case core.DiffAdded:
			added++
			strengths = append(strengths, fmt.Sprintf("introduced %s: %s", e.Name, e.After))
		case core.DiffChanged:
			changed++
			strengths = append(strengths, fmt.Sprintf("refined %s", e.Name))
		}
	}

	estimate := 5 + float64(added) + 0.5*float64(changed)
	if estimate > 10 {
		estimate = 10
	}
	confidence := 60 + 5*float64(len(history))
	if confidence > 90 {
		confidence = 90
	}

	verdict := core.Judgement{
		Summary: fmt.Sprintf("evolved %d generations: %d components refined, %d introduced",
			top.Generation, changed, added),
		Strengths:       strengths,
		Risks:           []string{"offline judgment is heuristic; validate against a live reviewer"},
		OverallEstimate: estimate,
		Confidence:      confidence,
		NextFocus:       "validate the introduced components against production constraints",
	}
	return verdict, nil
}

func contentHash(comps []core.Component, intent string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(intent))
	for _, comp := range comps {
		h.Write([]byte(comp.Name))
		h.Write([]byte(comp.Description))
	}
	return h.Sum32()
}

func flatten(comps []core.Component) string {
	var b strings.Builder
	for _, comp := range comps {
		b.WriteString(comp.Name)
		b.WriteString(" ")
		b.WriteString(comp.Description)
		b.WriteString(" ")
	}
	return b.String()
}
