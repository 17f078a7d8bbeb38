package stdout

import (
	"fmt"
	"io"
	"os"

	"hy2ctl/internal/profile"
	"hy2ctl/internal/publishers"
)

type Publisher struct {
	out io.Writer
}

func (p *Publisher) Publish(profiles []profile.Profile, config map[string]interface{}) error {
	payload, err := publishers.GenerateSubscriptionPayload(profiles, config)
	if err != nil {
		return err
	}

	out := p.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, payload)
	return err
}

func init() {
	publishers.Register("stdout", func() publishers.Publisher { return &Publisher{} })
}
