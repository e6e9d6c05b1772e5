package sendgrid

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"html/template"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

//go:embed templates/notification.html
var notificationTemplate string

const (
	sendEndpoint       = "/v3/mail/send"
	manifestAttachment = "manifest.json"
)

// Notifier sends the run summary by email through SendGrid
type Notifier struct {
	client     *sendgrid.Client
	from       string
	recipients []string
	tmpl       *template.Template
}

// Option is a functional option for the SendGrid notifier
type Option func(*config)

type config struct {
	host string
}

// WithHost overrides the SendGrid API host (for tests)
func WithHost(host string) Option {
	return func(c *config) {
		c.host = host
	}
}

// New creates a SendGrid notifier
func New(apiKey, from string, recipients []string, opts ...Option) (*Notifier, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	tmpl, err := template.New("notification").Parse(notificationTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse notification template")
	}

	request := sendgrid.GetRequest(apiKey, sendEndpoint, cfg.host)
	request.Method = http.MethodPost

	return &Notifier{
		client:     &sendgrid.Client{Request: request},
		from:       from,
		recipients: recipients,
		tmpl:       tmpl,
	}, nil
}

// Notify sends a single message to all recipients with the manifest attached
func (n *Notifier) Notify(ctx context.Context, msg *model.Notification) error {
	logger := ctxlog.From(ctx)

	if len(n.recipients) == 0 {
		return goerr.New("no recipients configured for email notification")
	}

	var body bytes.Buffer
	if err := n.tmpl.Execute(&body, msg); err != nil {
		return goerr.Wrap(err, "failed to render notification")
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("", n.from))
	m.Subject = msg.Subject()

	p := mail.NewPersonalization()
	for _, to := range n.recipients {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", body.String()))

	a := mail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(msg.Manifest))
	a.SetType(model.MIMEJSON)
	a.SetFilename(manifestAttachment)
	a.SetDisposition("attachment")
	m.AddAttachment(a)

	resp, err := n.client.SendWithContext(ctx, m)
	if err != nil {
		return goerr.Wrap(err, "failed to send email via SendGrid")
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return goerr.New("unexpected response from SendGrid",
			goerr.V("status", resp.StatusCode), goerr.V("body", resp.Body))
	}

	logger.Info("Sent email notification",
		"status", resp.StatusCode,
		"recipients", len(n.recipients),
	)
	return nil
}
