package file

import (
	"fmt"

	"hy2ctl/internal/logger"
	"hy2ctl/internal/profile"
	"hy2ctl/internal/publishers"
	"hy2ctl/internal/writer"
)

// Publisher writes the payload to params.path, e.g. a file served by a web
// server as a subscription.
type Publisher struct{}

func (p *Publisher) Publish(profiles []profile.Profile, config map[string]interface{}) error {
	path, _ := config["path"].(string)
	if path == "" {
		return fmt.Errorf("file publisher requires path")
	}

	payload, err := publishers.GenerateSubscriptionPayload(profiles, config)
	if err != nil {
		return err
	}
	if err := writer.WriteFile(path, []byte(payload+"\n")); err != nil {
		return fmt.Errorf("write subscription: %w", err)
	}
	logger.Log.Debugf("File publisher wrote %s", path)
	return nil
}

func init() {
	publishers.Register("file", func() publishers.Publisher { return &Publisher{} })
}
