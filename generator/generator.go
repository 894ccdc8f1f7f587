// Package generator produces candidate mutations of a pattern. Content
// synthesis is delegated to the external capability; this package owns the
// mutation/acceptance contract and the dream-vs-mutation draw.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/loom-forge/weaver/core"
)

// Generator derives offspring variants from a parent pattern. The random
// source is injected and seeded by the caller so runs are reproducible under
// test; it is never read from global state.
type Generator struct {
	synth core.Synthesizer

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator around the synthesis capability with a seeded
// random source.
func New(synth core.Synthesizer, seed int64) *Generator {
	return &Generator{
		synth: synth,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// draw is the single point where randomness enters generation.
func (g *Generator) draw() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Generate produces one offspring of parent. With probability dreamProb the
// step runs in dream mode and must introduce a component absent from the
// parent; otherwise it conservatively revises existing components. The
// offspring's generation is the parent's plus one and its origin records the
// mode taken.
func (g *Generator) Generate(ctx context.Context, parent core.Variant, intent string, dreamProb float64) (core.Variant, error) {
	if dreamProb < 0 || dreamProb > 1 {
		return core.Variant{}, &core.ValidationError{Field: "dream_probability", Reason: fmt.Sprintf("%.2f outside [0,1]", dreamProb)}
	}

	mode := core.ModeMutation
	origin := core.OriginMutation
	if g.draw() < dreamProb {
		mode = core.ModeDream
		origin = core.OriginDream
	}

	changes, err := g.synth.Synthesize(ctx, parent.Pattern.Components(), intent, mode)
	if err != nil {
		return core.Variant{}, &core.GenerationError{Mode: string(mode), Err: err}
	}
	if len(changes) == 0 {
		return core.Variant{}, &core.GenerationError{Mode: string(mode), Err: fmt.Errorf("synthesis returned no changes")}
	}

	offspring, err := applyChanges(parent.Pattern, changes, mode)
	if err != nil {
		return core.Variant{}, err
	}

	slog.DebugContext(ctx, "offspring generated",
		"lineage_id", parent.LineageID,
		"generation", parent.Generation+1,
		"origin", origin,
		"changes", len(changes),
	)

	return core.Variant{
		Pattern:    offspring,
		LineageID:  parent.LineageID,
		Generation: parent.Generation + 1,
		Origin:     origin,
	}, nil
}

// applyChanges folds the proposed edits into a fresh pattern. Edits never
// remove components, so the offspring can never end up empty; dream mode
// must contribute at least one genuinely new component.
func applyChanges(parent core.Pattern, changes []core.ComponentChange, mode core.Mode) (core.Pattern, error) {
	// inherited pillar scores are stale once the structure changes; the
	// scorer re-judges the offspring from scratch
	next, err := parent.WithoutPillarScores().WithID(uuid.NewString())
	if err != nil {
		return core.Pattern{}, err
	}

	novel := false
	for _, ch := range changes {
		_, exists := next.Component(ch.Name)
		switch {
		case ch.Added || !exists:
			if exists {
				return core.Pattern{}, &core.GenerationError{Mode: string(mode), Err: fmt.Errorf("change adds existing component %q", ch.Name)}
			}
			next, err = next.WithComponentAdded(ch.Name, ch.Description)
			novel = true
		default:
			next, err = next.WithComponentReplaced(ch.Name, ch.Description)
		}
		if err != nil {
			return core.Pattern{}, &core.GenerationError{Mode: string(mode), Err: err}
		}
	}

	if mode == core.ModeDream && !novel {
		return core.Pattern{}, &core.GenerationError{Mode: string(mode), Err: fmt.Errorf("dream step introduced no novel component")}
	}
	if len(next.Components()) == 0 {
		return core.Pattern{}, &core.GenerationError{Mode: string(mode), Err: fmt.Errorf("offspring has no components")}
	}
	return next, nil
}
