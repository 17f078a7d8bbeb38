package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRuleSet(t *testing.T) {
	data := `
default: direct
rules:
  - pattern: "*.cn"
    policy: DIRECT
  - pattern: ads.com
    policy: reject
    enabled: false
  - id: keep-me
    pattern: google.com
    policy: proxy
`
	rs, err := DecodeRuleSet([]byte(data), "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", rs.ProfileID)
	assert.True(t, rs.Enabled)
	assert.Equal(t, PolicyDirect, rs.Default)
	require.Len(t, rs.Rules, 3)
	assert.NotEmpty(t, rs.Rules[0].ID)
	assert.True(t, rs.Rules[0].Enabled)
	assert.Equal(t, PolicyBlock, rs.Rules[1].Policy)
	assert.False(t, rs.Rules[1].Enabled)
	assert.Equal(t, "keep-me", rs.Rules[2].ID)
	assert.Equal(t, PolicyTunnel, rs.Rules[2].Policy)
}

func TestDecodeRuleSet_RepeatedIDs(t *testing.T) {
	data := `
rules:
  - id: r1
    pattern: a.com
    policy: direct
  - id: r1
    pattern: b.com
    policy: block
`
	rs, err := DecodeRuleSet([]byte(data), "p1")
	require.NoError(t, err)
	require.Len(t, rs.Rules, 2)
	assert.Equal(t, "r1", rs.Rules[0].ID)
	assert.NotEqual(t, "r1", rs.Rules[1].ID)
	assert.NotEmpty(t, rs.Rules[1].ID)

	// editing the second rule leaves the first one alone
	edited := rs.WithRule(rs.Rules[1].WithEnabled(false))
	assert.Equal(t, "a.com", edited.Rules[0].Pattern)
	assert.True(t, edited.Rules[0].Enabled)
	assert.Equal(t, "b.com", edited.Rules[1].Pattern)
	assert.False(t, edited.Rules[1].Enabled)
}

func TestDecodeRuleSet_UnknownPolicy(t *testing.T) {
	_, err := DecodeRuleSet([]byte("rules:\n  - pattern: a.com\n    policy: sideways\n"), "")
	assert.Error(t, err)
}

func TestEncodeRuleSet_RoundTrip(t *testing.T) {
	rs := RuleSet{
		ProfileID: "p1",
		Default:   PolicyBlock,
		Enabled:   false,
		Rules: []Rule{
			NewRule("*.cn", PolicyDirect).WithDescription("cn"),
			NewRule("x.com", PolicyTunnel).WithEnabled(false),
		},
	}
	data, err := EncodeRuleSet(rs)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "profile_id")
	assert.Contains(t, string(data), "policy: DIRECT")

	back, err := DecodeRuleSet(data, "p2")
	require.NoError(t, err)
	assert.Equal(t, rs.WithProfileID("p2"), back)
}
