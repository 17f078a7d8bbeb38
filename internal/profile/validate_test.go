package profile

import (
	"testing"

	"hy2ctl/internal/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Profile {
	return New().WithServer("example.com:443").WithAuth("secret")
}

func TestValidate_Valid(t *testing.T) {
	res := Validate(valid())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	assert.True(t, Validate(valid().WithServer("example.com:20000-50000")).Valid)
	assert.True(t, Validate(valid().WithServer("example.com")).Valid)
	assert.True(t, Validate(valid().WithBandwidth(0, 0)).Valid)
}

func TestValidate_Ports(t *testing.T) {
	cases := map[string]string{
		"host:70000":     "invalid server port, must be in range 1-65535",
		"host:0":         "invalid server port, must be in range 1-65535",
		"host:abc":       "invalid server port, must be in range 1-65535",
		"host:":          "invalid server port, must be in range 1-65535",
		"host:1000-500":  "port range start must be less than end",
		"host:1000-1000": "port range start must be less than end",
		"host:1-2-3":     "port range must be in the form port1-port2",
		"host:a-b":       "port range must be numeric",
		"host:1-70000":   "port range values must be in range 1-65535",
	}
	for server, msg := range cases {
		res := Validate(valid().WithServer(server))
		assert.False(t, res.Valid, server)
		assert.Equal(t, []string{msg}, res.Errors, server)
	}
}

func TestValidate_CollectsEverything(t *testing.T) {
	p := Profile{
		BandwidthUp:     -1,
		BandwidthDown:   20000,
		MaxIdleTimeout:  1,
		KeepAlivePeriod: 61,
		ObfsEnabled:     true,
		PortHopInterval: -5,
	}
	res := Validate(p)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"server address must not be empty",
		"auth must not be empty",
		"bandwidth must not be negative",
		"bandwidth is too large (at most 10000 Mbps)",
		"max idle timeout must be between 5 and 300 seconds",
		"keep-alive period must be between 5 and 60 seconds",
		"obfuscation password is required when obfuscation is enabled",
		"port hop interval must not be negative",
	}, res.Errors)
}

func TestValidate_NegativeBandwidth(t *testing.T) {
	res := Validate(valid().WithBandwidth(-1, 10))
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, "bandwidth must not be negative")
}

func TestValidate_RuleSet(t *testing.T) {
	rs := routing.RuleSet{
		Rules: []routing.Rule{
			routing.NewRule("x.com", routing.PolicyDirect),
			routing.NewRule("x.com", routing.PolicyBlock),
		},
	}

	// disabled sets are not inspected
	assert.True(t, Validate(valid().WithRules(rs)).Valid)

	res := Validate(valid().WithRules(rs.WithEnabled(true)))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "routing: conflicting rules: x.com is set to both DIRECT and BLOCK", res.Errors[0])
	assert.Equal(t, []string{"routing: duplicate rule patterns: x.com"}, res.Warnings)
}
