package xray

import (
	"regexp"
	"strings"

	"hy2ctl/internal/profile"
	"hy2ctl/internal/routing"

	"golang.org/x/net/idna"
)

type matchers struct {
	domains []string
	ips     []string
}

func (m *matchers) add(pattern string, rep profile.Reporter) {
	p := strings.TrimSpace(pattern)
	switch {
	case strings.HasPrefix(p, "geoip:"):
		m.ips = append(m.ips, "geoip:"+strings.ToLower(strings.TrimPrefix(p, "geoip:")))
	case strings.HasPrefix(p, "geosite:"):
		m.domains = append(m.domains, "geosite:"+strings.ToLower(strings.TrimPrefix(p, "geosite:")))
	case strings.HasPrefix(p, "*."):
		m.domains = append(m.domains, "domain:"+toASCII(p[2:], rep))
	case strings.HasPrefix(p, "."):
		// raw suffix: matches x.com.example but not example itself
		m.domains = append(m.domains, `regexp:\.`+regexp.QuoteMeta(toASCII(p[1:], rep))+`$`)
	default:
		m.domains = append(m.domains, "full:"+toASCII(p, rep))
	}
}

func (m matchers) rules(tag string) []fieldRule {
	var out []fieldRule
	if len(m.domains) > 0 {
		out = append(out, fieldRule{Type: "field", Domain: m.domains, OutboundTag: tag})
	}
	if len(m.ips) > 0 {
		out = append(out, fieldRule{Type: "field", IP: m.ips, OutboundTag: tag})
	}
	return out
}

// buildRouting expresses the rule set as xray field rules. Order mirrors the
// tunnel client ACL: BLOCK, then DIRECT unless the pattern is also tunneled,
// then TUNNEL, then the default policy for everything else.
func buildRouting(rs routing.RuleSet, rep profile.Reporter) routingDoc {
	doc := routingDoc{DomainStrategy: "AsIs"}
	if !rs.Enabled {
		return doc
	}

	enabled := rs.EnabledRules()
	proxied := make(map[string]bool)
	for _, r := range enabled {
		if r.Policy == routing.PolicyTunnel {
			proxied[routing.ACLPattern(r.Pattern)] = true
		}
	}

	var block, direct, tunnel matchers
	for _, r := range enabled {
		switch r.Policy {
		case routing.PolicyBlock:
			block.add(r.Pattern, rep)
		case routing.PolicyDirect:
			if proxied[routing.ACLPattern(r.Pattern)] {
				rep.Debugf("xray: skipping direct %s, pattern is proxied", r.Pattern)
				continue
			}
			direct.add(r.Pattern, rep)
		default:
			tunnel.add(r.Pattern, rep)
		}
	}

	doc.Rules = append(doc.Rules, block.rules(tagBlock)...)
	doc.Rules = append(doc.Rules, direct.rules(tagDirect)...)
	doc.Rules = append(doc.Rules, tunnel.rules(tagProxy)...)
	doc.Rules = append(doc.Rules, fieldRule{Type: "field", Network: "tcp,udp", OutboundTag: policyTag(rs.Default)})

	// ip rules only see domain requests after resolution
	if len(block.ips)+len(direct.ips)+len(tunnel.ips) > 0 {
		doc.DomainStrategy = "IPIfNonMatch"
	}
	return doc
}

func toASCII(domain string, rep profile.Reporter) string {
	domain = strings.ToLower(domain)
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		rep.Debugf("xray: keeping %q as is: %v", domain, err)
		return domain
	}
	return ascii
}
