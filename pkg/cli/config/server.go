package config

import "github.com/urfave/cli/v3"

// Server holds configuration of the webhook server
type Server struct {
	Addr           string
	WebhookSecret  string `masq:"secret"`
	MaxPayloadSize int64
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("RELPUB_ADDR"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "Secret of the GitHub release webhook",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("RELPUB_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.Int64Flag{
			Name:        "max-payload-size",
			Usage:       "Maximum webhook payload size in bytes",
			Value:       25 << 20,
			Destination: &c.MaxPayloadSize,
			Sources:     cli.EnvVars("RELPUB_MAX_PAYLOAD_SIZE"),
		},
	}
}
