package config

import (
	"github.com/m-mizutani/drivemirror/pkg/infra/slack"
	"github.com/m-mizutani/drivemirror/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Slack holds notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for run notifications",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("DRIVEMIRROR_SLACK_WEBHOOK_URL"),
		},
	}
}

// MirrorOptions returns the notifier option when a webhook is configured
func (c *Slack) MirrorOptions() []usecase.MirrorOption {
	if c.WebhookURL == "" {
		return nil
	}
	return []usecase.MirrorOption{usecase.WithNotifier(slack.New(c.WebhookURL))}
}
