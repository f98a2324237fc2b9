package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

const (
	colorSuccess = "good"
	colorFailure = "danger"
	colorDryRun  = "#439FE0"
)

// Notifier posts run reports to an incoming webhook
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

type Option func(*Notifier)

func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.httpClient = client
	}
}

func New(webhookURL string, opts ...Option) (*Notifier, error) {
	if webhookURL == "" {
		return nil, goerr.New("slack webhook URL is empty", goerr.T(types.ErrTagInvalidConfig))
	}

	n := &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Transport: http.DefaultTransport},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Notify implements interfaces.Notifier
func (n *Notifier) Notify(ctx context.Context, report *model.RunReport) error {
	msg := buildMessage(report)
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		// the webhook URL is a credential and must not be attached to the error
		return goerr.Wrap(err, "failed to post slack message", goerr.V("run_id", report.RunID))
	}
	return nil
}

func buildMessage(report *model.RunReport) *slack.WebhookMessage {
	summary := report.Summary()

	color := colorSuccess
	switch {
	case report.Failed():
		color = colorFailure
	case report.DryRun:
		color = colorDryRun
	}

	title := fmt.Sprintf("%s: %s → %s", report.ParentRepo, report.OldTag, report.NewTag)
	if report.DryRun {
		title += " (dry run)"
	}

	fields := []slack.AttachmentField{
		{Title: "Changed", Value: fmt.Sprint(summary.Changed), Short: true},
		{Title: "Created", Value: fmt.Sprint(summary.Created), Short: true},
		{Title: "Failed", Value: fmt.Sprint(summary.Failed), Short: true},
	}
	if report.DryRun {
		fields = append(fields, slack.AttachmentField{Title: "Planned", Value: fmt.Sprint(summary.Planned), Short: true})
	}

	var lines []string
	for _, res := range report.Results {
		line := fmt.Sprintf("• `%s` %s", res.Name, res.State)
		if res.Tag != "" {
			line += " " + res.Tag
		}
		if res.ErrorKind != "" {
			line += fmt.Sprintf(" (%s)", res.ErrorKind)
		}
		lines = append(lines, line)
	}
	for _, res := range report.ResolutionFailures {
		lines = append(lines, fmt.Sprintf("• `%s` unresolved (%s)", res.Name, res.ErrorKind))
	}

	return &slack.WebhookMessage{
		Text: fmt.Sprintf("subtag run %s", report.RunID),
		Attachments: []slack.Attachment{
			{
				Color:  color,
				Title:  title,
				Text:   strings.Join(lines, "\n"),
				Fields: fields,
			},
		},
	}
}
