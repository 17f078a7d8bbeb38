package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Database   DatabaseConfig    `yaml:"database"`
	Output     OutputConfig      `yaml:"output"`
	Defaults   ProfileDefaults   `yaml:"defaults"`
	GeoIP      GeoIPConfig       `yaml:"geoip"`
	Collectors []CollectorConfig `yaml:"collectors"`
	Publishers []PublisherConfig `yaml:"publishers"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig controls where `render --write` puts its artifacts.
type OutputConfig struct {
	ConfigPath string `yaml:"config_path"`
	// ACLPath receives the ACL fragment. Empty means it is not written.
	ACLPath string `yaml:"acl_path"`
	// EmbedACL inlines the ACL into the client config as an acl block.
	EmbedACL bool `yaml:"embed_acl"`
}

// ProfileDefaults seed newly created profiles.
type ProfileDefaults struct {
	SOCKS5Listen  string `yaml:"socks5_listen"`
	HTTPListen    string `yaml:"http_listen"`
	BandwidthUp   int    `yaml:"bandwidth_up"`
	BandwidthDown int    `yaml:"bandwidth_down"`
	FastOpen      bool   `yaml:"fast_open"`
}

type GeoIPConfig struct {
	CountryPath string `yaml:"country_path"`
}

type CollectorConfig struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type"`
	Params map[string]interface{} `yaml:"params"`
}

type PublisherConfig struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type"`
	Params map[string]interface{} `yaml:"params"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "hy2ctl.db"},
		Output:   OutputConfig{ConfigPath: "hysteria.yaml"},
		Defaults: ProfileDefaults{
			SOCKS5Listen:  "127.0.0.1:1080",
			HTTPListen:    "127.0.0.1:1081",
			BandwidthUp:   100,
			BandwidthDown: 200,
			FastOpen:      true,
		},
		GeoIP: GeoIPConfig{CountryPath: "GeoLite2-Country.mmdb"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "hy2ctl.db"
	}
	if cfg.Output.ConfigPath == "" {
		cfg.Output.ConfigPath = "hysteria.yaml"
	}

	return cfg, nil
}

// FilterCollectors keeps only the named collectors. No names keeps all.
func (c *Config) FilterCollectors(names []string) {
	if len(names) == 0 {
		return
	}
	c.Collectors = lo.Filter(c.Collectors, func(item CollectorConfig, _ int) bool {
		return lo.Contains(names, item.Name)
	})
}

// FilterPublishers keeps only the named publishers. No names keeps all.
func (c *Config) FilterPublishers(names []string) {
	if len(names) == 0 {
		return
	}
	c.Publishers = lo.Filter(c.Publishers, func(item PublisherConfig, _ int) bool {
		return lo.Contains(names, item.Name)
	})
}
