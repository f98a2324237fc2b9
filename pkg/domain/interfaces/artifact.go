package interfaces

import (
	"context"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// ArtifactStore persists resolved repository ids for audit
type ArtifactStore interface {
	PutRepository(ctx context.Context, artifact *model.RepositoryArtifact) error
}

// Notifier delivers the final report of a run
type Notifier interface {
	Notify(ctx context.Context, report *model.RunReport) error
}
