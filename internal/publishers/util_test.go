package publishers

import (
	"encoding/base64"
	"strings"
	"testing"

	"hy2ctl/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profiles() []profile.Profile {
	a := profile.New().WithName("A").WithServer("a.example.com:443").WithAuth("pw")
	return []profile.Profile{
		a,
		a.Duplicate(), // same server and credentials
		profile.New().WithName("B").WithServer("b.example.com:20000-30000").WithAuth("u:p").WithObfs(true, "ob"),
		profile.New().WithName("broken"), // no server
	}
}

func TestGenerateSubscriptionPayload(t *testing.T) {
	out, err := GenerateSubscriptionPayload(profiles(), nil)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "hysteria2://pw@a.example.com:443/#A", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "hysteria2://u:p@b.example.com:20000-30000/?"))
	assert.Contains(t, lines[1], "obfs=salamander")
	assert.Contains(t, lines[1], "obfs-password=ob")
}

func TestGenerateSubscriptionPayload_Base64(t *testing.T) {
	plain, err := GenerateSubscriptionPayload(profiles(), nil)
	require.NoError(t, err)

	enc, err := GenerateSubscriptionPayload(profiles(), map[string]interface{}{"base64": true, "flags": true})
	require.NoError(t, err)

	dec, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	// no GeoIP database loaded, so flags change nothing
	assert.Equal(t, plain, string(dec))
}

func TestGetFlagEmoji(t *testing.T) {
	assert.Equal(t, "🇩🇪", getFlagEmoji("de"))
	assert.Equal(t, "🌐", getFlagEmoji(""))
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("nope")
	assert.EqualError(t, err, "publisher plugin 'nope' not found")
}
