package xray

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"github.com/xtls/xray-core/infra/conf"
)

const (
	tagProxy  = "proxy"
	tagDirect = "direct"
	tagBlock  = "block"
)

// Document is the JSON client config handed to xray.
type Document struct {
	Log       logSection `json:"log"`
	Inbounds  []inbound  `json:"inbounds"`
	Outbounds []outbound `json:"outbounds"`
	Routing   routingDoc `json:"routing"`
}

type logSection struct {
	LogLevel string `json:"loglevel"`
}

type inbound struct {
	Tag      string          `json:"tag"`
	Protocol string          `json:"protocol"`
	Listen   string          `json:"listen"`
	Port     int             `json:"port"`
	Settings json.RawMessage `json:"settings"`
}

type outbound struct {
	Tag            string          `json:"tag"`
	Protocol       string          `json:"protocol"`
	Settings       json.RawMessage `json:"settings"`
	StreamSettings *streamSettings `json:"streamSettings,omitempty"`
}

type streamSettings struct {
	Security    string       `json:"security"`
	TLSSettings *tlsSettings `json:"tlsSettings,omitempty"`
}

type tlsSettings struct {
	ServerName    string `json:"serverName,omitempty"`
	AllowInsecure bool   `json:"allowInsecure,omitempty"`
}

type routingDoc struct {
	DomainStrategy string      `json:"domainStrategy"`
	Rules          []fieldRule `json:"rules"`
}

type fieldRule struct {
	Type        string   `json:"type"`
	Domain      []string `json:"domain,omitempty"`
	IP          []string `json:"ip,omitempty"`
	Network     string   `json:"network,omitempty"`
	OutboundTag string   `json:"outboundTag"`
}

// Export renders p as an xray client config. The JSON is returned together
// with its parsed form so callers can hand the latter to xray's builder.
func Export(p profile.Profile, rep profile.Reporter) (*conf.Config, []byte, error) {
	doc, err := BuildDocument(p, rep)
	if err != nil {
		return nil, nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal xray config: %w", err)
	}
	cfg, err := Load(data)
	if err != nil {
		return nil, nil, err
	}
	return cfg, data, nil
}

// Load decodes an xray JSON config.
func Load(data []byte) (*conf.Config, error) {
	var cfg conf.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode xray config: %w", err)
	}
	return &cfg, nil
}

// Verify runs xray's own config builder over cfg.
func Verify(cfg *conf.Config) error {
	if _, err := cfg.Build(); err != nil {
		return fmt.Errorf("xray rejected config: %w", err)
	}
	return nil
}

// BuildDocument maps the profile onto xray inbounds, outbounds and routing.
func BuildDocument(p profile.Profile, rep profile.Reporter) (Document, error) {
	if rep == nil {
		rep = nopReporter{}
	}

	// 1. Outbounds
	proxy, err := buildHysteria2(p, rep)
	if err != nil {
		return Document{}, err
	}
	doc := Document{
		Log: logSection{LogLevel: "warning"},
		Outbounds: []outbound{
			proxy,
			{Tag: tagDirect, Protocol: "freedom", Settings: json.RawMessage(`{}`)},
			{Tag: tagBlock, Protocol: "blackhole", Settings: json.RawMessage(`{}`)},
		},
	}

	// 2. Inbounds
	socks, err := buildInbound("socks-in", "socks", p.SOCKS5Listen, `{"auth":"noauth","udp":true}`)
	if err != nil {
		return Document{}, fmt.Errorf("socks5 listen: %w", err)
	}
	doc.Inbounds = append(doc.Inbounds, socks)
	// In dual mode the socks inbound also serves HTTP proxy requests.
	if !p.DualMode {
		http, err := buildInbound("http-in", "http", p.HTTPListen, `{}`)
		if err != nil {
			return Document{}, fmt.Errorf("http listen: %w", err)
		}
		doc.Inbounds = append(doc.Inbounds, http)
	}

	// 3. Routing
	doc.Routing = buildRouting(p.RuleSet(), rep)
	return doc, nil
}

func buildHysteria2(p profile.Profile, rep profile.Reporter) (outbound, error) {
	host, ports := profile.SplitServer(p.Server)
	if host == "" {
		return outbound{}, fmt.Errorf("profile has no server")
	}

	// xray dials a single port; a hopping range starts at its first port.
	first := ports
	if i := strings.IndexAny(ports, "-,"); i >= 0 {
		first = ports[:i]
		rep.Debugf("xray: port range %s exported as port %s", ports, first)
	}
	port := 443
	if first != "" {
		n, err := strconv.Atoi(first)
		if err != nil {
			return outbound{}, fmt.Errorf("invalid server port %q", first)
		}
		port = n
	}

	settings := map[string]interface{}{
		"address": host,
		"port":    port,
		"auth":    p.Auth,
	}
	if p.ObfsEnabled && p.ObfsPassword != "" {
		settings["obfs"] = map[string]interface{}{
			"type": "salamander",
			"salamander": map[string]interface{}{
				"password": p.ObfsPassword,
			},
		}
	}
	if p.TLSPinSHA256 != "" {
		rep.Debugf("xray: pinSHA256 has no xray equivalent and is not exported")
	}

	sni := p.TLSSNI
	if sni == "" {
		sni = host
	}

	return outbound{
		Tag:      tagProxy,
		Protocol: "hysteria2",
		Settings: jsonRaw(settings),
		StreamSettings: &streamSettings{
			Security:    "tls",
			TLSSettings: &tlsSettings{ServerName: sni, AllowInsecure: p.TLSInsecure},
		},
	}, nil
}

func buildInbound(tag, protocol, listen, settings string) (inbound, error) {
	host, portStr := profile.SplitServer(listen)
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return inbound{}, fmt.Errorf("invalid listen address %q", listen)
	}
	if host == "" {
		host = "127.0.0.1"
	}
	return inbound{
		Tag:      tag,
		Protocol: protocol,
		Listen:   host,
		Port:     port,
		Settings: json.RawMessage(settings),
	}, nil
}

func jsonRaw(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return json.RawMessage(b)
}

type nopReporter struct{}

func (nopReporter) Debugf(string, ...interface{}) {}

// policyTag maps a routing policy to its outbound.
func policyTag(p routing.Policy) string {
	switch p {
	case routing.PolicyDirect:
		return tagDirect
	case routing.PolicyBlock:
		return tagBlock
	default:
		return tagProxy
	}
}
