package github

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// ErrTagInvalidPayload marks webhook bodies that cannot be decoded
var ErrTagInvalidPayload = goerr.NewTag("invalid_payload")

// EventProcessor converts GitHub webhook deliveries into domain events
type EventProcessor struct {
	webhookUC interfaces.WebhookUseCase
	now       func() time.Time
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(webhookUC interfaces.WebhookUseCase) *EventProcessor {
	return &EventProcessor{
		webhookUC: webhookUC,
		now:       time.Now,
	}
}

// ProcessEvent decodes a delivery and hands it to the webhook use case
func (p *EventProcessor) ProcessEvent(ctx context.Context, delivery, eventType string, body []byte) error {
	event, err := p.toWebhookEvent(delivery, eventType, body)
	if err != nil {
		return err
	}

	ctxlog.From(ctx).Debug("Received GitHub event",
		"delivery", event.ID,
		"type", event.Type,
		"repository", event.Repository.String(),
	)

	return p.webhookUC.ProcessEvent(ctx, event)
}

func (p *EventProcessor) toWebhookEvent(delivery, eventType string, body []byte) (*model.WebhookEvent, error) {
	event := &model.WebhookEvent{
		ID:         delivery,
		Type:       model.EventTypeUnknown,
		ReceivedAt: p.now(),
		RawPayload: body,
	}

	switch model.WebhookEventType(eventType) {
	case model.EventTypeCreate, model.EventTypeRelease:
	default:
		// ping, push and others are acknowledged without decoding
		return event, nil
	}

	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse webhook payload",
			goerr.V("event_type", eventType),
			goerr.V("delivery", delivery),
			goerr.T(ErrTagInvalidPayload),
		)
	}

	switch e := payload.(type) {
	case *github.CreateEvent:
		event.Type = model.EventTypeCreate
		event.RefType = e.GetRefType()
		event.Tag = e.GetRef()
		event.Repository = repoRef(e.GetRepo())
		event.Sender = e.GetSender().GetLogin()

	case *github.ReleaseEvent:
		event.Type = model.EventTypeRelease
		event.Action = e.GetAction()
		event.Tag = e.GetRelease().GetTagName()
		event.Repository = repoRef(e.GetRepo())
		event.Sender = e.GetSender().GetLogin()
	}

	return event, nil
}

func repoRef(repo *github.Repository) model.RepoRef {
	return model.RepoRef{
		Owner: repo.GetOwner().GetLogin(),
		Name:  repo.GetName(),
	}
}
