package profile

import (
	"strings"

	"hy2ctl/internal/routing"

	"github.com/google/uuid"
)

// Profile holds everything needed to connect through one Hysteria 2 server.
// It is treated as an immutable value; the With* helpers return copies.
type Profile struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Server is host:port or host:portA-portB for port hopping.
	Server string `yaml:"server"`
	// Auth is a password or user:pass.
	Auth string `yaml:"auth"`

	TLSSNI       string `yaml:"tls_sni,omitempty"`
	TLSInsecure  bool   `yaml:"tls_insecure,omitempty"`
	TLSPinSHA256 string `yaml:"tls_pin_sha256,omitempty"`

	ObfsEnabled  bool   `yaml:"obfs_enabled,omitempty"`
	ObfsPassword string `yaml:"obfs_password,omitempty"`

	// Mbps. 0 on both lets the client use BBR instead of Brutal.
	BandwidthUp   int `yaml:"bandwidth_up"`
	BandwidthDown int `yaml:"bandwidth_down"`

	// Seconds.
	MaxIdleTimeout          int  `yaml:"max_idle_timeout"`
	KeepAlivePeriod         int  `yaml:"keep_alive_period"`
	DisablePathMTUDiscovery bool `yaml:"disable_path_mtu_discovery,omitempty"`
	PortHopInterval         int  `yaml:"port_hop_interval,omitempty"`

	SOCKS5Listen string `yaml:"socks5_listen"`
	HTTPListen   string `yaml:"http_listen"`
	DualMode     bool   `yaml:"dual_mode,omitempty"`

	FastOpen bool `yaml:"fast_open"`
	Lazy     bool `yaml:"lazy,omitempty"`

	Rules *routing.RuleSet `yaml:"rules,omitempty"`
}

const (
	DefaultName          = "Default"
	DefaultSOCKS5Listen  = "127.0.0.1:1080"
	DefaultHTTPListen    = "127.0.0.1:1081"
	DefaultBandwidthUp   = 100
	DefaultBandwidthDown = 200
	DefaultIdleTimeout   = 30
	DefaultKeepAlive     = 10
)

// New returns a profile with the recommended defaults and a fresh id.
func New() Profile {
	return Profile{
		ID:              uuid.NewString(),
		Name:            DefaultName,
		BandwidthUp:     DefaultBandwidthUp,
		BandwidthDown:   DefaultBandwidthDown,
		MaxIdleTimeout:  DefaultIdleTimeout,
		KeepAlivePeriod: DefaultKeepAlive,
		SOCKS5Listen:    DefaultSOCKS5Listen,
		HTTPListen:      DefaultHTTPListen,
		FastOpen:        true,
	}
}

// Duplicate returns a copy under a new id. Rules are deep-copied and
// re-owned by the new profile.
func (p Profile) Duplicate() Profile {
	d := p.clone()
	d.ID = uuid.NewString()
	d.Name = p.Name + " (copy)"
	if d.Rules != nil {
		rs := d.Rules.WithProfileID(d.ID)
		d.Rules = &rs
	}
	return d
}

func (p Profile) clone() Profile {
	if p.Rules != nil {
		rs := p.Rules.Clone()
		p.Rules = &rs
	}
	return p
}

// RuleSet returns the attached rule set, or a disabled empty one.
func (p Profile) RuleSet() routing.RuleSet {
	if p.Rules == nil {
		return routing.RuleSet{ProfileID: p.ID}
	}
	return p.Rules.Clone()
}

// Host returns the server part before the last colon.
func (p Profile) Host() string {
	host, _ := SplitServer(p.Server)
	return host
}

// SplitServer splits "host:ports" at the last colon. ports is empty when
// there is no colon.
func SplitServer(server string) (host, ports string) {
	i := strings.LastIndex(server, ":")
	if i < 0 {
		return server, ""
	}
	host = server[:i]
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	return host, server[i+1:]
}

func (p Profile) WithName(name string) Profile {
	p = p.clone()
	p.Name = name
	return p
}

func (p Profile) WithServer(server string) Profile {
	p = p.clone()
	p.Server = server
	return p
}

func (p Profile) WithAuth(auth string) Profile {
	p = p.clone()
	p.Auth = auth
	return p
}

func (p Profile) WithTLS(sni string, insecure bool, pinSHA256 string) Profile {
	p = p.clone()
	p.TLSSNI, p.TLSInsecure, p.TLSPinSHA256 = sni, insecure, pinSHA256
	return p
}

func (p Profile) WithObfs(enabled bool, password string) Profile {
	p = p.clone()
	p.ObfsEnabled, p.ObfsPassword = enabled, password
	return p
}

func (p Profile) WithBandwidth(up, down int) Profile {
	p = p.clone()
	p.BandwidthUp, p.BandwidthDown = up, down
	return p
}

func (p Profile) WithQUIC(maxIdleTimeout, keepAlivePeriod int, disablePathMTUDiscovery bool) Profile {
	p = p.clone()
	p.MaxIdleTimeout, p.KeepAlivePeriod, p.DisablePathMTUDiscovery = maxIdleTimeout, keepAlivePeriod, disablePathMTUDiscovery
	return p
}

func (p Profile) WithPortHopInterval(seconds int) Profile {
	p = p.clone()
	p.PortHopInterval = seconds
	return p
}

func (p Profile) WithListen(socks5, http string, dualMode bool) Profile {
	p = p.clone()
	p.SOCKS5Listen, p.HTTPListen, p.DualMode = socks5, http, dualMode
	return p
}

func (p Profile) WithPerformance(fastOpen, lazy bool) Profile {
	p = p.clone()
	p.FastOpen, p.Lazy = fastOpen, lazy
	return p
}

// WithRules attaches a copy of rs, owned by this profile.
func (p Profile) WithRules(rs routing.RuleSet) Profile {
	p = p.clone()
	rs = rs.WithProfileID(p.ID)
	p.Rules = &rs
	return p
}

func (p Profile) WithoutRules() Profile {
	p.Rules = nil
	return p
}
