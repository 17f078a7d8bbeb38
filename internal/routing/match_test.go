package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches_Wildcard(t *testing.T) {
	for _, d := range []string{"example.com", "a.example.com", "a.b.example.com", "A.Example.COM"} {
		assert.True(t, Matches("*.example.com", d), d)
	}
	for _, d := range []string{"notexample.com", "example.org", "com"} {
		assert.False(t, Matches("*.example.com", d), d)
	}
}

func TestMatches_Exact(t *testing.T) {
	assert.True(t, Matches("Example.com", "example.COM"))
	assert.False(t, Matches("example.com", "www.example.com"))
}

func TestMatches_RawSuffix(t *testing.T) {
	assert.True(t, Matches(".example.com", "www.example.com"))
	assert.False(t, Matches(".example.com", "example.com"))
	// byte suffix only, no label boundary beyond the leading dot
	assert.True(t, Matches(".com", "anything.com"))
}

func TestMatches_OpaqueTags(t *testing.T) {
	assert.True(t, Matches("geosite:cn", "geosite:cn"))
	assert.False(t, Matches("geosite:cn", "baidu.cn"))
	assert.False(t, Matches("", "example.com"))
}

func TestValidPattern(t *testing.T) {
	valid := []string{"example.com", "*.example.com", ".example.com", "localhost", "a-b.c0", "geoip:cn", "geosite:category-ads-all", "GEOSITE:google@cn"}
	for _, p := range valid {
		assert.True(t, ValidPattern(p), p)
	}
	invalid := []string{"", "  ", "-bad.com", "bad-.com", "ad.*.com", "*.facebook.com/tr", "a..b", "geoip:", "foo:bar", "exa mple.com"}
	for _, p := range invalid {
		assert.False(t, ValidPattern(p), p)
	}
}

func TestACLPattern(t *testing.T) {
	assert.Equal(t, "suffix:example.com", ACLPattern("*.example.com"))
	assert.Equal(t, ".example.com", ACLPattern(".example.com"))
	assert.Equal(t, "geoip:cn", ACLPattern("geoip:cn"))
}
