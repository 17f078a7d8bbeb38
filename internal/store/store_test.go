package store

import (
	"path/filepath"
	"testing"

	"hy2ctl/internal/db"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return New(conn)
}

func sample(name string) profile.Profile {
	rs := routing.RuleSet{
		Enabled: true,
		Default: routing.PolicyDirect,
		Rules: []routing.Rule{
			routing.NewRule("*.cn", routing.PolicyDirect).WithDescription("cn"),
			routing.NewRule("ads.com", routing.PolicyBlock),
			routing.NewRule("google.com", routing.PolicyTunnel).WithEnabled(false),
		},
	}
	return profile.New().
		WithName(name).
		WithServer("example.com:443").
		WithAuth("secret").
		WithTLS("sni.example.com", true, "").
		WithObfs(true, "ob").
		WithRules(rs)
}

func TestSaveGet_RoundTrip(t *testing.T) {
	s := newStore(t)
	p := sample("Home")
	require.NoError(t, s.Save(p))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Server, got.Server)
	assert.True(t, got.TLSInsecure)
	assert.True(t, got.ObfsEnabled)
	assert.True(t, got.FastOpen)

	require.NotNil(t, got.Rules)
	assert.True(t, got.Rules.Enabled)
	assert.Equal(t, routing.PolicyDirect, got.Rules.Default)
	assert.Equal(t, p.ID, got.Rules.ProfileID)
	assert.Equal(t, p.Rules.Rules, got.Rules.Rules)

	// same ACL before and after persistence
	assert.Equal(t, profile.ACL(p), profile.ACL(got))
}

func TestSave_ReplacesRules(t *testing.T) {
	s := newStore(t)
	p := sample("Home")
	require.NoError(t, s.Save(p))

	rs := p.RuleSet().WithoutRule(p.Rules.Rules[0].ID).WithDefault(routing.PolicyBlock)
	p = p.WithRules(rs).WithName("Renamed")
	require.NoError(t, s.Save(p))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Len(t, got.Rules.Rules, 2)
	assert.Equal(t, "ads.com", got.Rules.Rules[0].Pattern)
	assert.Equal(t, routing.PolicyBlock, got.Rules.Default)

	// dropping the rule set entirely
	require.NoError(t, s.Save(p.WithoutRules()))
	got, err = s.Get(p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rules)
}

func TestSave_ImportedRulesWithRepeatedIDs(t *testing.T) {
	s := newStore(t)
	p := sample("Home")

	data := "rules:\n  - id: r1\n    pattern: a.com\n    policy: direct\n  - id: r1\n    pattern: b.com\n    policy: block\n"
	rs, err := routing.DecodeRuleSet([]byte(data), p.ID)
	require.NoError(t, err)
	require.True(t, rs.Validate().Valid)
	require.NoError(t, s.Save(p.WithRules(rs)))

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Rules.Rules, 2)
	assert.Equal(t, "a.com", got.Rules.Rules[0].Pattern)
	assert.Equal(t, "b.com", got.Rules.Rules[1].Pattern)
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Active()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureDefault(t *testing.T) {
	s := newStore(t)
	seed := profile.New()

	p, err := s.EnsureDefault(seed)
	require.NoError(t, err)
	assert.Equal(t, seed.ID, p.ID)

	// second call keeps the existing active profile
	p2, err := s.EnsureDefault(profile.New())
	require.NoError(t, err)
	assert.Equal(t, seed.ID, p2.ID)

	n, err := s.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDelete_Guards(t *testing.T) {
	s := newStore(t)
	a := sample("A")
	require.NoError(t, s.Save(a))
	require.NoError(t, s.SetActive(a.ID))

	assert.ErrorIs(t, s.Delete(a.ID), ErrLastProfile)

	b := sample("B")
	require.NoError(t, s.Save(b))
	assert.ErrorIs(t, s.Delete(a.ID), ErrActiveProfile)
	assert.ErrorIs(t, s.Delete("missing"), ErrNotFound)

	require.NoError(t, s.Delete(b.ID))
	_, err := s.Get(b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)
}

func TestDuplicate(t *testing.T) {
	s := newStore(t)
	a := sample("A")
	require.NoError(t, s.Save(a))

	d, err := s.Duplicate(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, d.ID)
	assert.Equal(t, "A (copy)", d.Name)

	got, err := s.Get(d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rules)
	assert.Len(t, got.Rules.Rules, 3)
	assert.Equal(t, d.ID, got.Rules.ProfileID)

	// the original keeps its rules
	orig, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Len(t, orig.Rules.Rules, 3)
}

func TestResolve(t *testing.T) {
	s := newStore(t)
	a := sample("Home")
	b := sample("Office")
	require.NoError(t, s.Save(a))
	require.NoError(t, s.Save(b))

	got, err := s.Resolve(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = s.Resolve("office")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = s.Resolve("nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	c := sample("Home")
	require.NoError(t, s.Save(c))
	_, err = s.Resolve("Home")
	assert.ErrorIs(t, err, ErrAmbiguous)
}
