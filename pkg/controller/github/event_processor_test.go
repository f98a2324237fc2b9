package github_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	githubcontroller "github.com/m-mizutani/subtag/pkg/controller/github"
	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// MockWebhookUseCase records every event it receives
type MockWebhookUseCase struct {
	processEventFunc func(ctx context.Context, event *model.WebhookEvent) error
	events           []*model.WebhookEvent
}

func (m *MockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	m.events = append(m.events, event)
	if m.processEventFunc != nil {
		return m.processEventFunc(ctx, event)
	}
	return nil
}

func TestEventProcessor_CreateEvent(t *testing.T) {
	mockUC := &MockWebhookUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC)

	body := []byte(`{
		"ref": "release-2",
		"ref_type": "tag",
		"repository": {"name": "platform", "owner": {"login": "acme"}},
		"sender": {"login": "octocat"}
	}`)
	gt.NoError(t, processor.ProcessEvent(context.Background(), "delivery-1", "create", body))

	gt.A(t, mockUC.events).Length(1)
	event := mockUC.events[0]
	gt.Equal(t, event.ID, "delivery-1")
	gt.Equal(t, event.Type, model.EventTypeCreate)
	gt.Equal(t, event.RefType, "tag")
	gt.Equal(t, event.Tag, "release-2")
	gt.Equal(t, event.Repository, model.RepoRef{Owner: "acme", Name: "platform"})
	gt.Equal(t, event.Sender, "octocat")
	gt.True(t, event.IsTagEvent())
}

func TestEventProcessor_ReleaseEvent(t *testing.T) {
	mockUC := &MockWebhookUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC)

	body := []byte(`{
		"action": "published",
		"release": {"tag_name": "release-3", "target_commitish": "main"},
		"repository": {"name": "platform", "owner": {"login": "acme"}},
		"sender": {"login": "octocat"}
	}`)
	gt.NoError(t, processor.ProcessEvent(context.Background(), "delivery-2", "release", body))

	gt.A(t, mockUC.events).Length(1)
	event := mockUC.events[0]
	gt.Equal(t, event.Type, model.EventTypeRelease)
	gt.Equal(t, event.Action, "published")
	gt.Equal(t, event.Tag, "release-3")
	gt.True(t, event.Triggers(model.RepoRef{Owner: "acme", Name: "platform"}, "release-"))
}

func TestEventProcessor_UnsupportedEvent(t *testing.T) {
	mockUC := &MockWebhookUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC)

	gt.NoError(t, processor.ProcessEvent(context.Background(), "delivery-3", "ping", []byte(`{"zen":"Keep it logically awesome."}`)))
	gt.A(t, mockUC.events).Length(1)
	gt.Equal(t, mockUC.events[0].Type, model.EventTypeUnknown)
	gt.False(t, mockUC.events[0].IsTagEvent())
}

func TestEventProcessor_InvalidPayload(t *testing.T) {
	mockUC := &MockWebhookUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC)

	err := processor.ProcessEvent(context.Background(), "delivery-4", "create", []byte(`{"ref":`))
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, githubcontroller.ErrTagInvalidPayload))
	gt.A(t, mockUC.events).Length(0)
}

func TestEventProcessor_UseCaseError(t *testing.T) {
	mockUC := &MockWebhookUseCase{
		processEventFunc: func(ctx context.Context, event *model.WebhookEvent) error {
			return errors.New("boom")
		},
	}
	processor := githubcontroller.NewEventProcessor(mockUC)

	body := []byte(`{"ref":"v1","ref_type":"tag","repository":{"name":"r","owner":{"login":"o"}}}`)
	err := processor.ProcessEvent(context.Background(), "delivery-5", "create", body)
	gt.Error(t, err)
	gt.False(t, goerr.HasTag(err, githubcontroller.ErrTagInvalidPayload))
}
