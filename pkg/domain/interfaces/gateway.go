package interfaces

import (
	"context"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// Gateway defines the queries and the mutation the propagation needs from the hosting service
type Gateway interface {
	// RecentTags returns up to limit tags whose name matches filter, ordered by commit date descending
	RecentTags(ctx context.Context, repo model.RepoRef, limit int, filter string) ([]model.TagRef, error)

	// SubmodulePointers returns the submodule pointer table of repo at tag
	SubmodulePointers(ctx context.Context, repo model.RepoRef, tag string) (*model.Snapshot, error)

	// RepositoryID returns the opaque identifier of repo
	RepositoryID(ctx context.Context, repo model.RepoRef) (model.RepositoryID, error)

	// CreateTag creates a new tag (as a release) in repo. It is not idempotent.
	CreateTag(ctx context.Context, repo model.RepoRef, req model.TagRequest) error
}
