package xray

import (
	"encoding/json"
	"testing"

	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(rs routing.RuleSet) profile.Profile {
	return profile.New().
		WithServer("hk.example.com:20000-30000").
		WithAuth("secret").
		WithObfs(true, "ob").
		WithRules(rs)
}

func decodeRules(t *testing.T, raw []json.RawMessage) []fieldRule {
	t.Helper()
	out := make([]fieldRule, 0, len(raw))
	for _, r := range raw {
		var fr fieldRule
		require.NoError(t, json.Unmarshal(r, &fr))
		out = append(out, fr)
	}
	return out
}

func TestExport_Routing(t *testing.T) {
	rs := routing.RuleSet{
		Enabled: true,
		Default: routing.PolicyDirect,
		Rules: []routing.Rule{
			routing.NewRule("*.cn", routing.PolicyDirect),
			routing.NewRule("google.com", routing.PolicyTunnel),
			routing.NewRule("google.com", routing.PolicyDirect), // shadowed by the tunnel rule
			routing.NewRule(".corp", routing.PolicyDirect),
			routing.NewRule("ads.com", routing.PolicyBlock),
			routing.NewRule("geoip:cn", routing.PolicyDirect),
			routing.NewRule("geosite:category-ads", routing.PolicyBlock),
			routing.NewRule("*.bücher.de", routing.PolicyTunnel),
			routing.NewRule("off.com", routing.PolicyBlock).WithEnabled(false),
		},
	}

	cfg, data, err := Export(testProfile(rs), nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.RouterConfig)
	assert.Contains(t, string(data), `"domainStrategy": "IPIfNonMatch"`)

	rules := decodeRules(t, cfg.RouterConfig.RuleList)
	assert.Equal(t, []fieldRule{
		{Type: "field", Domain: []string{"full:ads.com", "geosite:category-ads"}, OutboundTag: "block"},
		{Type: "field", Domain: []string{"domain:cn", `regexp:\.corp$`}, OutboundTag: "direct"},
		{Type: "field", IP: []string{"geoip:cn"}, OutboundTag: "direct"},
		{Type: "field", Domain: []string{"full:google.com", "domain:xn--bcher-kva.de"}, OutboundTag: "proxy"},
		{Type: "field", Network: "tcp,udp", OutboundTag: "direct"},
	}, rules)
}

func TestExport_DisabledRules(t *testing.T) {
	rs := routing.RuleSet{Rules: []routing.Rule{routing.NewRule("*.cn", routing.PolicyDirect)}}

	cfg, data, err := Export(testProfile(rs), nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.RouterConfig.RuleList)
	assert.Contains(t, string(data), `"domainStrategy": "AsIs"`)
}

func TestExport_Outbounds(t *testing.T) {
	p := testProfile(routing.RuleSet{}).WithTLS("sni.example.com", true, "")

	doc, err := BuildDocument(p, nil)
	require.NoError(t, err)

	require.Len(t, doc.Outbounds, 3)
	proxy := doc.Outbounds[0]
	assert.Equal(t, "proxy", proxy.Tag)
	assert.Equal(t, "hysteria2", proxy.Protocol)
	assert.JSONEq(t, `{"address":"hk.example.com","port":20000,"auth":"secret","obfs":{"type":"salamander","salamander":{"password":"ob"}}}`, string(proxy.Settings))
	assert.Equal(t, "sni.example.com", proxy.StreamSettings.TLSSettings.ServerName)
	assert.True(t, proxy.StreamSettings.TLSSettings.AllowInsecure)
	assert.Equal(t, "freedom", doc.Outbounds[1].Protocol)
	assert.Equal(t, "blackhole", doc.Outbounds[2].Protocol)

	require.Len(t, doc.Inbounds, 2)
	assert.Equal(t, inbound{Tag: "socks-in", Protocol: "socks", Listen: "127.0.0.1", Port: 1080, Settings: json.RawMessage(`{"auth":"noauth","udp":true}`)}, doc.Inbounds[0])
	assert.Equal(t, 1081, doc.Inbounds[1].Port)

	dual, err := BuildDocument(p.WithListen("0.0.0.0:7890", "", true), nil)
	require.NoError(t, err)
	require.Len(t, dual.Inbounds, 1)
	assert.Equal(t, "0.0.0.0", dual.Inbounds[0].Listen)
}

func TestExport_Errors(t *testing.T) {
	_, err := BuildDocument(profile.New(), nil)
	assert.ErrorContains(t, err, "no server")

	_, err = BuildDocument(profile.New().WithServer("h:443").WithListen("nope", "", false), nil)
	assert.ErrorContains(t, err, "socks5 listen")
}
