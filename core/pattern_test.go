package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seedPattern(t *testing.T) Pattern {
	t.Helper()
	p, err := NewPattern("seed-1", []Component{
		{Name: "auth", Description: "Ory"},
		{Name: "load_balancer", Description: "HAProxy for reverse proxy"},
	}, map[string]float64{"security": 30})
	require.NoError(t, err)
	return p
}

func TestNewPatternValidation(t *testing.T) {
	_, err := NewPattern("", []Component{{Name: "a", Description: "x"}}, nil)
	require.True(t, IsValidation(err))

	_, err = NewPattern("p", nil, nil)
	require.True(t, IsValidation(err))

	_, err = NewPattern("p", []Component{{Name: "  ", Description: "x"}}, nil)
	require.True(t, IsValidation(err))

	_, err = NewPattern("p", []Component{
		{Name: "a", Description: "x"},
		{Name: "a", Description: "y"},
	}, nil)
	require.True(t, IsValidation(err))

	_, err = NewPattern("p", []Component{{Name: "a", Description: "x"}}, map[string]float64{"cost": 101})
	require.True(t, IsValidation(err))

	_, err = NewPattern("p", []Component{{Name: "a", Description: "x"}}, map[string]float64{"cost": -1})
	require.True(t, IsValidation(err))
}

func TestWithComponentReplacedIsImmutable(t *testing.T) {
	p := seedPattern(t)

	next, err := p.WithComponentReplaced("auth", "Keycloak with MFA")
	require.NoError(t, err)

	got, ok := next.Component("auth")
	require.True(t, ok)
	require.Equal(t, "Keycloak with MFA", got.Description)

	// original untouched
	orig, ok := p.Component("auth")
	require.True(t, ok)
	require.Equal(t, "Ory", orig.Description)

	_, err = p.WithComponentReplaced("missing", "x")
	require.True(t, IsValidation(err))
}

func TestWithComponentAdded(t *testing.T) {
	p := seedPattern(t)

	next, err := p.WithComponentAdded("waf", "ModSecurity in front of the edge")
	require.NoError(t, err)
	require.Len(t, next.Components(), 3)
	require.Len(t, p.Components(), 2)

	_, err = p.WithComponentAdded("auth", "dup")
	require.True(t, IsValidation(err))

	_, err = p.WithComponentAdded("", "empty")
	require.True(t, IsValidation(err))
}

func TestWithPillarScoreBounds(t *testing.T) {
	p := seedPattern(t)

	next, err := p.WithPillarScore("security", 80)
	require.NoError(t, err)

	v, ok := next.PillarScore("security")
	require.True(t, ok)
	require.Equal(t, 80.0, v)

	v, ok = p.PillarScore("security")
	require.True(t, ok)
	require.Equal(t, 30.0, v)

	_, err = p.WithPillarScore("security", 100.5)
	require.True(t, IsValidation(err))
}

func TestFingerprintIgnoresID(t *testing.T) {
	p := seedPattern(t)

	renamed, err := p.WithID("other-id")
	require.NoError(t, err)
	require.Equal(t, p.Fingerprint(), renamed.Fingerprint())

	changed, err := p.WithPillarScore("cost", 50)
	require.NoError(t, err)
	require.NotEqual(t, p.Fingerprint(), changed.Fingerprint())
}

func TestPillarNamesSorted(t *testing.T) {
	p, err := NewPattern("p", []Component{{Name: "a", Description: "x"}},
		map[string]float64{"security": 10, "cost": 20, "complexity": 30})
	require.NoError(t, err)
	require.Equal(t, []string{"complexity", "cost", "security"}, p.PillarNames())
}
