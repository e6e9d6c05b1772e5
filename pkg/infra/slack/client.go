package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relpub/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier posts the run summary to a Slack incoming webhook
type Notifier struct {
	webhookURL string
}

// New creates a Slack notifier
func New(webhookURL string) *Notifier {
	return &Notifier{webhookURL: webhookURL}
}

// Notify posts one message summarizing the run
func (n *Notifier) Notify(ctx context.Context, msg *model.Notification) error {
	color := "good"
	if msg.Report != nil && (len(msg.Report.Failures) > 0 || !msg.Report.LatestWritten) {
		color = "warning"
	}

	webhook := &slack.WebhookMessage{
		Text: fmt.Sprintf("*%s*\nStorage %s has been updated.", msg.Subject(), msg.BaseURL),
		Attachments: []slack.Attachment{
			{
				Color:  color,
				Fields: summaryFields(msg.Report),
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, webhook); err != nil {
		return goerr.Wrap(err, "failed to post Slack notification")
	}
	return nil
}

func summaryFields(report *model.PublishReport) []slack.AttachmentField {
	if report == nil {
		return nil
	}

	latest := "not identified"
	if report.LatestWritten {
		latest = report.Latest
	}

	fields := []slack.AttachmentField{
		{Title: "Published", Value: fmt.Sprintf("%d of %d", report.PublishedCount, report.FetchedCount), Short: true},
		{Title: "Latest", Value: latest, Short: true},
		{Title: "Uploaded", Value: fmt.Sprintf("%d objects", len(report.Uploaded)), Short: true},
		{Title: "Run ID", Value: report.RunID, Short: true},
	}

	if len(report.Failures) > 0 {
		var lines []string
		for _, f := range report.Failures {
			lines = append(lines, fmt.Sprintf("`%s`: %s", f.Key, f.Reason))
		}
		fields = append(fields, slack.AttachmentField{
			Title: "Failures",
			Value: strings.Join(lines, "\n"),
		})
	}

	return fields
}
