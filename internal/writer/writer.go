package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"hy2ctl/internal/config"
	"hy2ctl/internal/profile"
)

// Result lists the files that were written.
type Result struct {
	ConfigPath string
	ACLPath    string
}

// Write renders p and writes the client config, plus the ACL fragment when
// out.ACLPath is set. With out.EmbedACL the ACL is inlined into the config.
func Write(p profile.Profile, out config.OutputConfig, rep profile.Reporter) (Result, error) {
	var res Result

	var cfg string
	if out.EmbedACL {
		cfg = profile.RenderWithACL(p, rep)
	} else {
		cfg = profile.RenderTo(p, rep)
	}
	if err := WriteFile(out.ConfigPath, []byte(cfg)); err != nil {
		return res, fmt.Errorf("write config: %w", err)
	}
	res.ConfigPath = out.ConfigPath

	if out.ACLPath != "" {
		if err := WriteFile(out.ACLPath, []byte(profile.ACLTo(p, rep))); err != nil {
			return res, fmt.Errorf("write acl: %w", err)
		}
		res.ACLPath = out.ACLPath
	}

	return res, nil
}

// WriteFile replaces path through a temp file in the same directory so a
// running client never reads a half-written file.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("empty output path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// the config carries credentials
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
