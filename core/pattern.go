package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Pattern is a scored architecture graph: an ordered sequence of uniquely
// named components plus per-pillar scores in [0,100]. Patterns are immutable;
// the With* methods return modified copies so lineages can share ancestors
// safely.
type Pattern struct {
	id         string
	components []Component
	pillars    map[string]float64
}

// NewPattern validates the seed data and constructs a pattern.
func NewPattern(id string, components []Component, pillars map[string]float64) (Pattern, error) {
	if id == "" {
		return Pattern{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if len(components) == 0 {
		return Pattern{}, &ValidationError{Field: "components", Reason: "pattern needs at least one component"}
	}
	seen := make(map[string]struct{}, len(components))
	for _, c := range components {
		if strings.TrimSpace(c.Name) == "" {
			return Pattern{}, &ValidationError{Field: "components", Reason: "component name must not be empty"}
		}
		if _, dup := seen[c.Name]; dup {
			return Pattern{}, &ValidationError{Field: "components", Reason: fmt.Sprintf("duplicate component name %q", c.Name)}
		}
		seen[c.Name] = struct{}{}
	}
	for name, v := range pillars {
		if err := validatePillar(name, v); err != nil {
			return Pattern{}, err
		}
	}
	return Pattern{
		id:         id,
		components: append([]Component(nil), components...),
		pillars:    copyPillars(pillars),
	}, nil
}

func validatePillar(name string, v float64) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "pillars", Reason: "pillar name must not be empty"}
	}
	if v < 0 || v > 100 {
		return &ValidationError{Field: "pillars." + name, Reason: fmt.Sprintf("score %.2f outside [0,100]", v)}
	}
	return nil
}

// ID returns the pattern's opaque identity.
func (p Pattern) ID() string { return p.id }

// Components returns the ordered component list as a copy.
func (p Pattern) Components() []Component {
	return append([]Component(nil), p.components...)
}

// Component looks up a component by name.
func (p Pattern) Component(name string) (Component, bool) {
	for _, c := range p.components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}

// PillarScore looks up a pillar score by name.
func (p Pattern) PillarScore(name string) (float64, bool) {
	v, ok := p.pillars[name]
	return v, ok
}

// Pillars returns a copy of the pillar score map.
func (p Pattern) Pillars() map[string]float64 {
	return copyPillars(p.pillars)
}

// PillarNames returns the pillar names in sorted order.
func (p Pattern) PillarNames() []string {
	names := make([]string, 0, len(p.pillars))
	for name := range p.pillars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithComponentReplaced returns a copy with the named component's description
// replaced. The component must exist.
func (p Pattern) WithComponentReplaced(name, description string) (Pattern, error) {
	if _, ok := p.Component(name); !ok {
		return Pattern{}, &ValidationError{Field: "components", Reason: fmt.Sprintf("unknown component %q", name)}
	}
	next := p.clone()
	for i, c := range next.components {
		if c.Name == name {
			next.components[i].Description = description
			break
		}
	}
	return next, nil
}

// WithComponentAdded returns a copy with a new component appended. The name
// must be non-empty and unused.
func (p Pattern) WithComponentAdded(name, description string) (Pattern, error) {
	if strings.TrimSpace(name) == "" {
		return Pattern{}, &ValidationError{Field: "components", Reason: "component name must not be empty"}
	}
	if _, ok := p.Component(name); ok {
		return Pattern{}, &ValidationError{Field: "components", Reason: fmt.Sprintf("duplicate component name %q", name)}
	}
	next := p.clone()
	next.components = append(next.components, Component{Name: name, Description: description})
	return next, nil
}

// WithPillarScore returns a copy with the pillar set to value.
func (p Pattern) WithPillarScore(pillar string, value float64) (Pattern, error) {
	if err := validatePillar(pillar, value); err != nil {
		return Pattern{}, err
	}
	next := p.clone()
	next.pillars[pillar] = value
	return next, nil
}

// WithoutPillarScores returns a copy with all pillar scores dropped. A
// structurally changed offspring carries stale scores, so the generator
// clears them and the scorer re-judges the result.
func (p Pattern) WithoutPillarScores() Pattern {
	next := p.clone()
	next.pillars = map[string]float64{}
	return next
}

// WithID returns a copy under a new identity. Offspring get fresh ids so
// score records never alias their parent.
func (p Pattern) WithID(id string) (Pattern, error) {
	if id == "" {
		return Pattern{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	next := p.clone()
	next.id = id
	return next, nil
}

// Fingerprint returns a stable content hash over components and pillar
// scores. Identical patterns fingerprint identically regardless of id, which
// backs the evaluation cache and the scorer's determinism guarantee.
func (p Pattern) Fingerprint() string {
	h := sha256.New()
	for _, c := range p.components {
		fmt.Fprintf(h, "c|%s|%s\n", c.Name, c.Description)
	}
	for _, name := range p.PillarNames() {
		fmt.Fprintf(h, "p|%s|%.6f\n", name, p.pillars[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (p Pattern) clone() Pattern {
	return Pattern{
		id:         p.id,
		components: append([]Component(nil), p.components...),
		pillars:    copyPillars(p.pillars),
	}
}

func copyPillars(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
