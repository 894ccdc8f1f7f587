package core

import "sort"

// DiffKind classifies one row of a pattern diff.
type DiffKind string

const (
	DiffAdded     DiffKind = "added"
	DiffChanged   DiffKind = "changed"
	DiffRemoved   DiffKind = "removed"
	DiffUnchanged DiffKind = "unchanged"
)

// DiffEntry describes how one component differs between two patterns.
type DiffEntry struct {
	Kind   DiffKind `json:"kind"`
	Name   string   `json:"name"`
	Before string   `json:"before,omitempty"`
	After  string   `json:"after,omitempty"`
}

// DiffComponents computes the structural difference between an original
// pattern and a derived one. Rows follow the original's component order;
// additions come last, sorted by name, so the output is deterministic.
func DiffComponents(original, derived Pattern) []DiffEntry {
	entries := make([]DiffEntry, 0, len(original.components)+len(derived.components))

	for _, c := range original.components {
		after, ok := derived.Component(c.Name)
		switch {
		case !ok:
			entries = append(entries, DiffEntry{Kind: DiffRemoved, Name: c.Name, Before: c.Description})
		case after.Description != c.Description:
			entries = append(entries, DiffEntry{Kind: DiffChanged, Name: c.Name, Before: c.Description, After: after.Description})
		default:
			entries = append(entries, DiffEntry{Kind: DiffUnchanged, Name: c.Name, Before: c.Description, After: after.Description})
		}
	}

	added := make([]DiffEntry, 0)
	for _, c := range derived.components {
		if _, ok := original.Component(c.Name); !ok {
			added = append(added, DiffEntry{Kind: DiffAdded, Name: c.Name, After: c.Description})
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].Name < added[j].Name })

	return append(entries, added...)
}

// PillarDelta is the before/after of one pillar score.
type PillarDelta struct {
	Name   string  `json:"name"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// DiffPillars compares two pillar-score snapshots, sorted by pillar name.
// Pillars absent on one side report 0 for that side. Snapshots come from
// score records rather than patterns, since offspring shed their inherited
// scores before re-scoring.
func DiffPillars(before, after map[string]float64) []PillarDelta {
	names := map[string]struct{}{}
	for name := range before {
		names[name] = struct{}{}
	}
	for name := range after {
		names[name] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	deltas := make([]PillarDelta, 0, len(sorted))
	for _, name := range sorted {
		deltas = append(deltas, PillarDelta{
			Name:   name,
			Before: before[name],
			After:  after[name],
		})
	}
	return deltas
}
