package profile

import (
	"fmt"
	"strings"

	"hy2ctl/internal/routing"
)

// Reporter receives rendering diagnostics.
type Reporter = routing.Reporter

// Render produces the client configuration text. Block order is fixed and
// optional blocks are omitted when they carry nothing.
//
// The routing ACL is not part of the output; use ACL to obtain it.
func Render(p Profile) string {
	return RenderTo(p, nil)
}

// RenderTo is Render with diagnostics sent to rep.
func RenderTo(p Profile, rep Reporter) string {
	var b block

	if rep != nil {
		rep.Debugf("render: profile %q server=%s hop=%d rules=%t", p.Name, p.Server, p.PortHopInterval, p.Rules != nil && p.Rules.Enabled)
	}

	b.line("server: %s", p.Server)
	b.end()

	b.line("auth: %s", p.Auth)
	b.end()

	if strings.TrimSpace(p.TLSSNI) != "" || p.TLSInsecure || strings.TrimSpace(p.TLSPinSHA256) != "" {
		b.line("tls:")
		if strings.TrimSpace(p.TLSSNI) != "" {
			b.line("  sni: %s", p.TLSSNI)
		}
		if p.TLSInsecure {
			b.line("  insecure: true")
		}
		if strings.TrimSpace(p.TLSPinSHA256) != "" {
			b.line("  pinSHA256: %s", p.TLSPinSHA256)
		}
		b.end()
	}

	if p.ObfsEnabled && strings.TrimSpace(p.ObfsPassword) != "" {
		b.line("obfs:")
		b.line("  type: salamander")
		b.line("  salamander:")
		b.line("    password: %s", p.ObfsPassword)
		b.end()
	}

	// 0 on both sides means BBR
	if p.BandwidthUp > 0 || p.BandwidthDown > 0 {
		b.line("bandwidth:")
		b.line("  up: %d mbps", p.BandwidthUp)
		b.line("  down: %d mbps", p.BandwidthDown)
		b.end()
	}

	b.line("quic:")
	b.line("  maxIdleTimeout: %ds", p.MaxIdleTimeout)
	b.line("  keepAlivePeriod: %ds", p.KeepAlivePeriod)
	if p.DisablePathMTUDiscovery {
		b.line("  disablePathMTUDiscovery: true")
	}
	b.end()

	if p.PortHopInterval > 0 {
		b.line("transport:")
		b.line("  type: udp")
		b.line("  udp:")
		b.line("    hopInterval: %ds", p.PortHopInterval)
		b.end()
	}

	// Dual mode serves both protocols on the SOCKS5 port.
	httpListen := p.HTTPListen
	if p.DualMode {
		httpListen = p.SOCKS5Listen
	}

	b.line("socks5:")
	b.line("  listen: %s", p.SOCKS5Listen)
	b.end()

	b.line("http:")
	b.line("  listen: %s", httpListen)
	b.end()

	if p.FastOpen {
		b.line("fastOpen: true")
		b.end()
	}
	if p.Lazy {
		b.line("lazy: true")
		b.end()
	}

	return b.String()
}

// ACL returns the routing ACL fragment for the profile, empty when the
// profile has no enabled rule set.
func ACL(p Profile) string {
	return ACLTo(p, nil)
}

func ACLTo(p Profile, rep Reporter) string {
	if p.Rules == nil {
		return ""
	}
	return routing.RenderACLTo(*p.Rules, rep)
}

// RenderWithACL appends the ACL as an inline acl block. The stock client
// output does not do this; it is only used when explicitly configured.
func RenderWithACL(p Profile, rep Reporter) string {
	out := RenderTo(p, rep)
	lines := routing.ACLLines(ACLTo(p, rep))
	if len(lines) == 0 {
		return out
	}

	var b block
	b.line("acl:")
	b.line("  inline:")
	for _, l := range lines {
		b.line("    - %s", l)
	}
	b.end()
	return out + b.String()
}

type block struct {
	sb strings.Builder
}

func (b *block) line(format string, args ...interface{}) {
	if len(args) == 0 {
		b.sb.WriteString(format)
	} else {
		fmt.Fprintf(&b.sb, format, args...)
	}
	b.sb.WriteByte('\n')
}

// end terminates a block with an empty line.
func (b *block) end() {
	b.sb.WriteByte('\n')
}

func (b *block) String() string {
	return b.sb.String()
}
