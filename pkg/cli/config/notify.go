package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/infra/slack"
)

// Notify holds report notification settings
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook receiving run reports",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("SUBTAG_SLACK_WEBHOOK_URL"),
		},
	}
}

// Notifier returns the configured notifier, nil when notification is disabled
func (c *Notify) Notifier() (interfaces.Notifier, error) {
	if c.SlackWebhookURL == "" {
		return nil, nil
	}
	n, err := slack.New(c.SlackWebhookURL)
	if err != nil {
		return nil, err
	}
	return n, nil
}
