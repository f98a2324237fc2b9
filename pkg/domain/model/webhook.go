package model

import (
	"strings"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypeCreate  WebhookEventType = "create"
	EventTypeRelease WebhookEventType = "release"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., published)
	Repository RepoRef          // Repository that emitted the event
	Sender     string           // Sender username
	RefType    string           // "tag" or "branch" for create events
	Tag        string           // Tag name carried by the event
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsTagEvent checks if the event announces a new tag
func (e *WebhookEvent) IsTagEvent() bool {
	switch e.Type {
	case EventTypeCreate:
		return e.RefType == "tag" && e.Tag != ""
	case EventTypeRelease:
		return e.Action == "published" && e.Tag != ""
	default:
		return false
	}
}

// Triggers checks if the event is a new tag of parent matching filter
func (e *WebhookEvent) Triggers(parent RepoRef, filter string) bool {
	if !e.IsTagEvent() {
		return false
	}
	if !strings.EqualFold(e.Repository.Owner, parent.Owner) || !strings.EqualFold(e.Repository.Name, parent.Name) {
		return false
	}
	return strings.Contains(e.Tag, filter)
}

// HealthStatus is the body of the webhook server health check
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
