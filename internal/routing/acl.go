package routing

import "strings"

// Reporter receives diagnostics from rendering. *zap.SugaredLogger satisfies it.
type Reporter interface {
	Debugf(template string, args ...interface{})
}

type nopReporter struct{}

func (nopReporter) Debugf(string, ...interface{}) {}

// RenderACL produces the ACL fragment for the tunnel client.
//
// The client only knows reject(...) and direct(...); anything left unmatched
// goes through the tunnel. TUNNEL rules are therefore expressed by emitting
// nothing for them, and DIRECT directives that would shadow them are dropped.
func RenderACL(rs RuleSet) string {
	return RenderACLTo(rs, nil)
}

// RenderACLTo is RenderACL with diagnostics sent to rep.
func RenderACLTo(rs RuleSet, rep Reporter) string {
	if rep == nil {
		rep = nopReporter{}
	}
	if !rs.Enabled {
		return ""
	}

	enabled := rs.EnabledRules()
	rep.Debugf("acl: %d enabled rules, default %s", len(enabled), rs.Default)

	proxied := make(map[string]struct{})
	for _, r := range enabled {
		if r.Policy == PolicyTunnel {
			proxied[ACLPattern(r.Pattern)] = struct{}{}
		}
	}

	var sb strings.Builder

	for _, r := range enabled {
		if r.Policy == PolicyBlock {
			writeDirective(&sb, "reject", ACLPattern(r.Pattern))
		}
	}

	for _, r := range enabled {
		if r.Policy != PolicyDirect {
			continue
		}
		p := ACLPattern(r.Pattern)
		if _, ok := proxied[p]; ok {
			rep.Debugf("acl: skipping direct(%s), pattern is proxied", p)
			continue
		}
		writeDirective(&sb, "direct", p)
	}

	switch rs.Default {
	case PolicyDirect:
		if len(proxied) == 0 {
			writeDirective(&sb, "direct", "all")
		} else {
			rep.Debugf("acl: no direct(all), %d proxied patterns rely on fallthrough", len(proxied))
		}
	case PolicyBlock:
		writeDirective(&sb, "reject", "all")
	}

	return sb.String()
}

// ACLLines splits a rendered fragment into its directives.
func ACLLines(acl string) []string {
	var lines []string
	for _, l := range strings.Split(acl, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func writeDirective(sb *strings.Builder, kind, pattern string) {
	sb.WriteString(kind)
	sb.WriteByte('(')
	sb.WriteString(pattern)
	sb.WriteString(")\n")
}
