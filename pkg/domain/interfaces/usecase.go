package interfaces

import (
	"context"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// PropagationUseCase runs a whole tag propagation
type PropagationUseCase interface {
	// Run compares the two most recent parent tags and propagates tags to changed submodules.
	// An error is returned only when the run could not be carried out at all.
	Run(ctx context.Context, input model.RunInput) (*model.RunReport, error)
}
