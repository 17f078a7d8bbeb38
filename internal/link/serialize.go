package link

import (
	"net/url"
	"strings"
)

// ToURI converts the link back into hysteria2:// form.
func (l *Link) ToURI() string {
	u := url.URL{
		Scheme:   "hysteria2",
		Host:     l.Server(),
		Path:     "/",
		Fragment: l.Name,
	}

	if l.Auth != "" {
		if user, pass, ok := strings.Cut(l.Auth, ":"); ok {
			u.User = url.UserPassword(user, pass)
		} else {
			u.User = url.User(l.Auth)
		}
	}

	q := u.Query()
	if l.SNI != "" {
		q.Set("sni", l.SNI)
	}
	if l.Insecure {
		q.Set("insecure", "1")
	}
	if l.PinSHA256 != "" {
		q.Set("pinSHA256", l.PinSHA256)
	}
	if l.ObfsPassword != "" {
		obfs := l.Obfs
		if obfs == "" {
			obfs = "salamander"
		}
		q.Set("obfs", obfs)
		q.Set("obfs-password", l.ObfsPassword)
	}

	u.RawQuery = q.Encode()
	return u.String()
}

func needsBrackets(host string) bool {
	return strings.Contains(host, ":") && !strings.HasPrefix(host, "[")
}
