package profile

import (
	"testing"

	"hy2ctl/internal/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	p := New()
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Default", p.Name)
	assert.Equal(t, 100, p.BandwidthUp)
	assert.Equal(t, 200, p.BandwidthDown)
	assert.Equal(t, 30, p.MaxIdleTimeout)
	assert.Equal(t, 10, p.KeepAlivePeriod)
	assert.Equal(t, "127.0.0.1:1080", p.SOCKS5Listen)
	assert.Equal(t, "127.0.0.1:1081", p.HTTPListen)
	assert.True(t, p.FastOpen)
	assert.False(t, p.Lazy)
	assert.Nil(t, p.Rules)
}

func TestBuilders_CopyOnWrite(t *testing.T) {
	base := New().WithRules(routing.DefaultRuleSet(""))
	changed := base.WithServer("h:443").WithRules(base.RuleSet().WithEnabled(true))

	assert.Empty(t, base.Server)
	assert.False(t, base.Rules.Enabled)
	assert.True(t, changed.Rules.Enabled)
	assert.Equal(t, base.ID, changed.Rules.ProfileID)

	// editing a rule on the copy must not leak into the original
	changed.Rules.Rules[0].Pattern = "mutated.com"
	assert.Equal(t, "*.cn", base.Rules.Rules[0].Pattern)
}

func TestDuplicate(t *testing.T) {
	p := New().WithName("Home").WithServer("h:443").WithRules(routing.DefaultRuleSet(""))
	d := p.Duplicate()

	assert.NotEqual(t, p.ID, d.ID)
	assert.Equal(t, "Home (copy)", d.Name)
	assert.Equal(t, p.Server, d.Server)
	require.NotNil(t, d.Rules)
	assert.Equal(t, d.ID, d.Rules.ProfileID)
	assert.Equal(t, p.ID, p.Rules.ProfileID)
}

func TestSplitServer(t *testing.T) {
	cases := map[string][2]string{
		"example.com:443":       {"example.com", "443"},
		"example.com:1000-2000": {"example.com", "1000-2000"},
		"example.com":           {"example.com", ""},
		"[::1]:443":             {"::1", "443"},
	}
	for in, want := range cases {
		host, ports := SplitServer(in)
		assert.Equal(t, want[0], host, in)
		assert.Equal(t, want[1], ports, in)
	}
}

func TestFromLink(t *testing.T) {
	p, err := FromLink("hy2://user:pw@hk.example.com:20000-30000/?sni=s.example.com&obfs-password=ob#HK")
	require.NoError(t, err)

	assert.Equal(t, "HK", p.Name)
	assert.Equal(t, "hk.example.com:20000-30000", p.Server)
	assert.Equal(t, "user:pw", p.Auth)
	assert.Equal(t, "s.example.com", p.TLSSNI)
	assert.True(t, p.ObfsEnabled)
	assert.Equal(t, "ob", p.ObfsPassword)
	assert.Equal(t, 30, p.MaxIdleTimeout)
	assert.True(t, Validate(p).Valid)

	back, err := FromLink(ToLink(p).ToURI())
	require.NoError(t, err)
	assert.Equal(t, p.Server, back.Server)
	assert.Equal(t, p.Auth, back.Auth)
	assert.Equal(t, p.Name, back.Name)

	_, err = FromLink("trojan://x@y:1")
	assert.Error(t, err)
}
