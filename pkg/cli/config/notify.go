package config

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/interfaces"
	"github.com/m-mizutani/relpub/pkg/infra/sendgrid"
	"github.com/m-mizutani/relpub/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Notify holds notification configuration. Every channel is optional.
type Notify struct {
	SendGridAPIKey  string `masq:"secret"`
	SendGridTargets string
	SendGridHost    string
	From            string
	SlackWebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sendgrid-api-key",
			Usage:       "SendGrid API key",
			Destination: &c.SendGridAPIKey,
			Sources:     cli.EnvVars("SENDGRID_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "sendgrid-target-list",
			Usage:       `Recipients as a JSON array, e.g. ["ops@example.com"]`,
			Destination: &c.SendGridTargets,
			Sources:     cli.EnvVars("SENDGRID_TARGET_LIST"),
		},
		&cli.StringFlag{
			Name:        "sendgrid-host",
			Usage:       "SendGrid API host",
			Value:       "https://api.sendgrid.com",
			Destination: &c.SendGridHost,
			Sources:     cli.EnvVars("RELPUB_SENDGRID_HOST"),
		},
		&cli.StringFlag{
			Name:        "mail-from",
			Usage:       "Sender address of the notification email",
			Value:       "no-reply@hmsamericas.com",
			Destination: &c.From,
			Sources:     cli.EnvVars("RELPUB_MAIL_FROM"),
		},
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("RELPUB_SLACK_WEBHOOK_URL"),
		},
	}
}

// Recipients parses the JSON array of email recipients
func (c *Notify) Recipients() ([]string, error) {
	var recipients []string
	if err := json.Unmarshal([]byte(c.SendGridTargets), &recipients); err != nil {
		return nil, goerr.Wrap(err, "failed to parse recipient list as JSON array",
			goerr.V("value", c.SendGridTargets))
	}
	return recipients, nil
}

// Notifiers builds the configured notifiers. A missing or malformed recipient
// list disables email with a log message and does not fail the run.
func (c *Notify) Notifiers(ctx context.Context) ([]interfaces.Notifier, error) {
	logger := ctxlog.From(ctx)
	var notifiers []interfaces.Notifier

	switch {
	case c.SendGridAPIKey == "":
		logger.Debug("SendGrid API key is not set, email notification disabled")
	case c.SendGridTargets == "":
		logger.Error("Notification canceled because SENDGRID_TARGET_LIST is not set")
	default:
		recipients, err := c.Recipients()
		if err != nil {
			logger.Error("Notification canceled, invalid recipient list", "error", err)
			break
		}
		n, err := sendgrid.New(c.SendGridAPIKey, c.From, recipients, sendgrid.WithHost(c.SendGridHost))
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}

	if c.SlackWebhookURL != "" {
		notifiers = append(notifiers, slack.New(c.SlackWebhookURL))
	}

	return notifiers, nil
}
