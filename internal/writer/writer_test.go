package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hy2ctl/internal/config"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() profile.Profile {
	rs := routing.RuleSet{
		Enabled: true,
		Rules:   []routing.Rule{routing.NewRule("*.cn", routing.PolicyDirect)},
	}
	return profile.New().WithServer("h:443").WithAuth("a").WithRules(rs)
}

func TestWrite_ConfigAndACL(t *testing.T) {
	dir := t.TempDir()
	p := testProfile()
	out := config.OutputConfig{
		ConfigPath: filepath.Join(dir, "nested", "hysteria.yaml"),
		ACLPath:    filepath.Join(dir, "acl.txt"),
	}

	res, err := Write(p, out, nil)
	require.NoError(t, err)
	assert.Equal(t, out.ConfigPath, res.ConfigPath)
	assert.Equal(t, out.ACLPath, res.ACLPath)

	data, err := os.ReadFile(out.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, profile.Render(p), string(data))

	acl, err := os.ReadFile(out.ACLPath)
	require.NoError(t, err)
	assert.Equal(t, "direct(suffix:cn)\n", string(acl))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(out.ConfigPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWrite_EmbedACL(t *testing.T) {
	dir := t.TempDir()
	out := config.OutputConfig{ConfigPath: filepath.Join(dir, "c.yaml"), EmbedACL: true}

	res, err := Write(testProfile(), out, nil)
	require.NoError(t, err)
	assert.Empty(t, res.ACLPath)

	data, err := os.ReadFile(out.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "acl:\n  inline:\n    - direct(suffix:cn)\n")
}

type countingReporter struct{ lines []string }

func (c *countingReporter) Debugf(template string, args ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(template, args...))
}

func TestWrite_RendersOnce(t *testing.T) {
	for _, embed := range []bool{false, true} {
		rep := &countingReporter{}
		out := config.OutputConfig{ConfigPath: filepath.Join(t.TempDir(), "c.yaml"), EmbedACL: embed}

		_, err := Write(testProfile(), out, rep)
		require.NoError(t, err)

		renders := 0
		for _, l := range rep.lines {
			if strings.HasPrefix(l, "render: profile") {
				renders++
			}
		}
		assert.Equal(t, 1, renders, "embed=%t", embed)
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, WriteFile(path, []byte("one")))
	require.NoError(t, WriteFile(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	assert.Error(t, WriteFile("", nil))
}
