package file

import (
	"os"
	"path/filepath"
	"testing"

	"hy2ctl/internal/profile"
	"hy2ctl/internal/publishers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "links.txt")
	pub, err := publishers.Get("file")
	require.NoError(t, err)

	profiles := []profile.Profile{profile.New().WithName("A").WithServer("a.example.com:443").WithAuth("pw")}
	require.NoError(t, pub.Publish(profiles, map[string]interface{}{"path": path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hysteria2://pw@a.example.com:443/#A\n", string(data))

	assert.Error(t, pub.Publish(profiles, map[string]interface{}{}))
}
