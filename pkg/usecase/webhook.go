package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/utils/async"
)

type webhookUseCase struct {
	propagation interfaces.PropagationUseCase
	parent      model.RepoRef
	tagFilter   string
	dispatch    func(ctx context.Context, handler func(ctx context.Context) error)

	// running serializes runs, two tags pushed together must not race on the same submodules.
	// It also guards handled.
	running sync.Mutex
	// handled holds trigger tags whose run started, a tag emits both create and release events
	handled map[string]struct{}
}

// WebhookOption configures the webhook use case
type WebhookOption func(*webhookUseCase)

// WithDispatcher replaces async.Dispatch, tests use it to run synchronously
func WithDispatcher(dispatch func(ctx context.Context, handler func(ctx context.Context) error)) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.dispatch = dispatch
	}
}

// NewWebhook creates a new instance of WebhookUseCase that triggers a propagation run for
// every new tag of parent matching tagFilter
func NewWebhook(propagation interfaces.PropagationUseCase, parent model.RepoRef, tagFilter string, opts ...WebhookOption) *webhookUseCase {
	uc := &webhookUseCase{
		propagation: propagation,
		parent:      parent,
		tagFilter:   tagFilter,
		dispatch:    async.Dispatch,
		handled:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent processes a webhook event
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository.String(),
		"sender", event.Sender,
		"tag", event.Tag,
	)

	if !event.Triggers(uc.parent, uc.tagFilter) {
		logger.Debug("Event does not trigger propagation",
			"type", event.Type,
			"ref_type", event.RefType,
			"tag", event.Tag,
		)
		return nil
	}

	input := model.RunInput{TriggerTag: event.Tag}
	uc.dispatch(ctx, func(ctx context.Context) error {
		uc.running.Lock()
		defer uc.running.Unlock()

		if _, ok := uc.handled[input.TriggerTag]; ok {
			ctxlog.From(ctx).Info("Tag already propagated, skip", "tag", input.TriggerTag)
			return nil
		}
		uc.handled[input.TriggerTag] = struct{}{}

		report, err := uc.propagation.Run(ctx, input)
		if err != nil {
			// nothing was tagged, let a redelivery try again
			delete(uc.handled, input.TriggerTag)
			return goerr.Wrap(err, "propagation run failed", goerr.V("trigger", input.TriggerTag))
		}
		if report.Failed() {
			return goerr.New("propagation finished with failures",
				goerr.V("run_id", report.RunID),
				goerr.V("summary", report.Summary()),
			)
		}
		return nil
	})

	return nil
}
