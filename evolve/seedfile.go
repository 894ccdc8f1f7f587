package evolve

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loom-forge/weaver/core"
)

// seedDoc is the on-disk shape of a seed file. A file holds either a single
// pattern or a list under "patterns".
type seedDoc struct {
	Patterns []seedPattern `json:"patterns" yaml:"patterns"`
	seedPattern `yaml:",inline"`
}

type seedPattern struct {
	ID         string             `json:"id" yaml:"id"`
	Components []core.Component   `json:"components" yaml:"components"`
	Pillars    map[string]float64 `json:"pillars" yaml:"pillars"`
}

// LoadSeeds reads seed patterns from a JSON or YAML file, picking the decoder
// by extension. Every pattern is validated on construction.
func LoadSeeds(path string) ([]core.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var doc seedDoc
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}

	raw := doc.Patterns
	if len(raw) == 0 && doc.ID != "" {
		raw = []seedPattern{doc.seedPattern}
	}
	if len(raw) == 0 {
		return nil, &core.ValidationError{Field: "seeds", Reason: "seed file defines no patterns"}
	}

	seeds := make([]core.Pattern, 0, len(raw))
	for _, sp := range raw {
		p, err := core.NewPattern(sp.ID, sp.Components, sp.Pillars)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, p)
	}
	return seeds, nil
}
