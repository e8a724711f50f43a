package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Notifier posts mirror run outcomes to a Slack incoming webhook
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// Option configures the Notifier
type Option func(*Notifier)

// WithHTTPClient replaces the client used to call the webhook
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.httpClient = client
	}
}

// New creates a Notifier for webhookURL
func New(webhookURL string, opts ...Option) *Notifier {
	n := &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) NotifyRun(ctx context.Context, run *model.MirrorRun) error {
	msg := buildMessage(run)
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack webhook",
			goerr.V("run_id", run.ID),
			goerr.T(types.ErrTagRemoteService),
		)
	}
	return nil
}

func buildMessage(run *model.MirrorRun) *slack.WebhookMessage {
	color := "good"
	title := fmt.Sprintf("Mirrored %s into %s", run.RootID, run.RepoName)
	if run.Status == model.RunStatusFailed {
		color = "danger"
		title = fmt.Sprintf("Mirror of %s into %s failed", run.RootID, run.RepoName)
	}

	fields := []slack.AttachmentField{
		{Title: "Run ID", Value: run.ID, Short: true},
		{Title: "State", Value: string(run.State), Short: true},
		{Title: "Files collected", Value: fmt.Sprintf("%d", run.FilesCollected), Short: true},
		{Title: "Files published", Value: fmt.Sprintf("%d", run.FilesPublished), Short: true},
	}
	if run.RepositoryURL != "" {
		fields = append(fields, slack.AttachmentField{Title: "Repository", Value: run.RepositoryURL})
	}
	if run.ErrorKind != "" {
		fields = append(fields, slack.AttachmentField{Title: "Error kind", Value: run.ErrorKind, Short: true})
	}
	if run.PartialRepository() {
		fields = append(fields, slack.AttachmentField{
			Title: "Partial repository",
			Value: "The repository exists without a complete commit graph and must be removed manually",
		})
	}

	return &slack.WebhookMessage{
		Text: title,
		Attachments: []slack.Attachment{
			{Color: color, Fields: fields},
		},
	}
}
