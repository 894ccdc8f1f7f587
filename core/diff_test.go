package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffComponents(t *testing.T) {
	original, err := NewPattern("orig", []Component{
		{Name: "auth", Description: "Ory"},
		{Name: "load_balancer", Description: "HAProxy for reverse proxy"},
		{Name: "queue", Description: "Redis lists"},
	}, nil)
	require.NoError(t, err)

	derived, err := NewPattern("top", []Component{
		{Name: "auth", Description: "Ory with hardened session config"},
		{Name: "load_balancer", Description: "HAProxy for reverse proxy"},
		{Name: "waf", Description: "ModSecurity at the edge"},
	}, nil)
	require.NoError(t, err)

	entries := DiffComponents(original, derived)
	require.Len(t, entries, 4)

	require.Equal(t, DiffChanged, entries[0].Kind)
	require.Equal(t, "auth", entries[0].Name)
	require.Equal(t, "Ory", entries[0].Before)

	require.Equal(t, DiffUnchanged, entries[1].Kind)
	require.Equal(t, DiffRemoved, entries[2].Kind)
	require.Equal(t, "queue", entries[2].Name)

	require.Equal(t, DiffAdded, entries[3].Kind)
	require.Equal(t, "waf", entries[3].Name)
	require.Empty(t, entries[3].Before)
}

func TestDiffComponentsDeterministicAdditions(t *testing.T) {
	original, err := NewPattern("orig", []Component{{Name: "core", Description: "monolith"}}, nil)
	require.NoError(t, err)

	derived, err := NewPattern("top", []Component{
		{Name: "core", Description: "monolith"},
		{Name: "zeta", Description: "z"},
		{Name: "alpha", Description: "a"},
	}, nil)
	require.NoError(t, err)

	entries := DiffComponents(original, derived)
	require.Equal(t, "alpha", entries[1].Name)
	require.Equal(t, "zeta", entries[2].Name)
}

func TestDiffPillars(t *testing.T) {
	deltas := DiffPillars(
		map[string]float64{"security": 30},
		map[string]float64{"security": 70, "cost": 40},
	)
	require.Len(t, deltas, 2)
	require.Equal(t, "cost", deltas[0].Name)
	require.Equal(t, 0.0, deltas[0].Before)
	require.Equal(t, 40.0, deltas[0].After)
	require.Equal(t, "security", deltas[1].Name)
	require.Equal(t, 30.0, deltas[1].Before)
	require.Equal(t, 70.0, deltas[1].After)
}
