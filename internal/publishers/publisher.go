package publishers

import (
	"fmt"

	"hy2ctl/internal/profile"
)

// Publisher ships the share links of a set of profiles somewhere.
type Publisher interface {
	Publish(profiles []profile.Profile, config map[string]interface{}) error
}

type Factory func() Publisher

var registry = make(map[string]Factory)

func Register(name string, factory Factory) {
	registry[name] = factory
}

func Get(name string) (Publisher, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("publisher plugin '%s' not found", name)
	}
	return factory(), nil
}
