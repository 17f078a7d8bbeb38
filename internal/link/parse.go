package link

import (
	"fmt"
	"net/url"
	"strings"
)

// Parse decodes a hysteria2:// or hy2:// link.
func Parse(raw string) (*Link, error) {
	raw = FixIllegalUrl(raw)
	parts := strings.SplitN(raw, "://", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid uri format")
	}

	scheme := strings.ToLower(parts[0])
	switch scheme {
	case "hysteria2", "hy2":
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", scheme)
	}

	// net/url rejects "host:20000-50000", so the port part is cut out first.
	rest, ports := splitPorts(parts[1])

	u, err := url.Parse("hysteria2://" + rest)
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("missing host")
	}

	l := &Link{
		RawURI: raw,
		Name:   u.Fragment,
		Host:   u.Hostname(),
		Ports:  ports,
	}
	if l.Ports == "" {
		l.Ports = u.Port()
	}
	if l.Ports == "" {
		l.Ports = "443"
	}

	if u.User != nil {
		l.Auth = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			l.Auth += ":" + pass
		}
	}

	q := u.Query()
	ParseQueryParam(l, q)

	return l, nil
}

// splitPorts removes a non-numeric port list or range from the
// authority of s and returns it separately.
func splitPorts(s string) (rest, ports string) {
	end := strings.IndexAny(s, "/?#")
	if end < 0 {
		end = len(s)
	}
	authority := s[:end]

	hostStart := strings.LastIndex(authority, "@") + 1
	hostPort := authority[hostStart:]

	colon := strings.LastIndex(hostPort, ":")
	if colon < 0 || strings.HasSuffix(hostPort, "]") {
		return s, ""
	}
	p := hostPort[colon+1:]
	if !strings.ContainsAny(p, "-,") {
		return s, ""
	}
	return s[:hostStart] + hostPort[:colon] + s[end:], p
}

// ParseQueryParam copies the hysteria2 query parameters into l.
func ParseQueryParam(l *Link, q url.Values) {
	if v := q.Get("sni"); v != "" {
		l.SNI = v
	}
	if v := q.Get("pinSHA256"); v != "" {
		l.PinSHA256 = v
	}
	if v := q.Get("obfs"); v != "" {
		l.Obfs = v
	}
	if v := q.Get("obfs-password"); v != "" {
		l.ObfsPassword = v
		if l.Obfs == "" {
			l.Obfs = "salamander"
		}
	}
	if v := q.Get("mport"); v != "" {
		l.Ports = v
	}

	// Insecure mapping (1/0/true/false)
	for _, key := range []string{"insecure", "allowInsecure", "allow_insecure"} {
		if val := q.Get(key); val != "" {
			l.Insecure = val == "1" || val == "true"
			break
		}
	}
}
