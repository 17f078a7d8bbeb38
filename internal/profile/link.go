package profile

import (
	"fmt"

	"hy2ctl/internal/link"
)

// FromLink builds a default profile carrying the server, auth, TLS and obfs
// settings of a hysteria2:// link.
func FromLink(raw string) (Profile, error) {
	l, err := link.Parse(raw)
	if err != nil {
		return Profile{}, fmt.Errorf("parse link: %w", err)
	}

	p := New().
		WithServer(l.Server()).
		WithAuth(l.Auth).
		WithTLS(l.SNI, l.Insecure, l.PinSHA256).
		WithObfs(l.ObfsPassword != "", l.ObfsPassword)
	if l.Name != "" {
		p = p.WithName(l.Name)
	} else {
		p = p.WithName(l.Host)
	}
	return p, nil
}

// ToLink exports the shareable part of the profile. Local listeners, QUIC
// tuning and rules stay behind.
func ToLink(p Profile) *link.Link {
	host, ports := SplitServer(p.Server)
	l := &link.Link{
		Name:      p.Name,
		Host:      host,
		Ports:     ports,
		Auth:      p.Auth,
		SNI:       p.TLSSNI,
		Insecure:  p.TLSInsecure,
		PinSHA256: p.TLSPinSHA256,
	}
	if p.ObfsEnabled && p.ObfsPassword != "" {
		l.Obfs = "salamander"
		l.ObfsPassword = p.ObfsPassword
	}
	return l
}
