package routing

import (
	"fmt"
	"strings"
)

// Policy is the path chosen for traffic to a destination.
// The zero value is PolicyTunnel so an unset policy never leaks traffic.
type Policy int

const (
	PolicyTunnel Policy = iota
	PolicyDirect
	PolicyBlock
)

func (p Policy) String() string {
	switch p {
	case PolicyDirect:
		return "DIRECT"
	case PolicyBlock:
		return "BLOCK"
	default:
		return "TUNNEL"
	}
}

// ParsePolicy accepts the policy names case-insensitively.
// "proxy" is kept as an alias of TUNNEL for rule files written by older clients.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tunnel", "proxy":
		return PolicyTunnel, nil
	case "direct":
		return PolicyDirect, nil
	case "block", "reject":
		return PolicyBlock, nil
	default:
		return PolicyTunnel, fmt.Errorf("unknown policy: %q", s)
	}
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
