package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

// RepositoryResolver resolves the repository id of a submodule by its leaf name
type RepositoryResolver func(ctx context.Context, name string) (model.RepositoryID, error)

// GatewayResolver resolves submodule repositories owned by owner through gw
func GatewayResolver(gw interfaces.Gateway, owner string) RepositoryResolver {
	return func(ctx context.Context, name string) (model.RepositoryID, error) {
		return gw.RepositoryID(ctx, model.RepoRef{Owner: owner, Name: name})
	}
}

type reconcileConfig struct {
	store interfaces.ArtifactStore
	owner string
	runID string
	now   func() time.Time
}

// ReconcileOption configures Reconcile
type ReconcileOption func(*reconcileConfig)

// WithArtifactStore records every resolved repository id in store
func WithArtifactStore(store interfaces.ArtifactStore, owner, runID string) ReconcileOption {
	return func(c *reconcileConfig) {
		c.store = store
		c.owner = owner
		c.runID = runID
	}
}

// Reconcile resolves the repository id of every change. Changes that cannot be resolved are
// removed from the returned set and returned as failures with Err set; they never stop the others.
func Reconcile(ctx context.Context, changes model.ChangeSet, resolve RepositoryResolver, opts ...ReconcileOption) (model.ChangeSet, []*model.ChangeRecord) {
	cfg := &reconcileConfig{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := ctxlog.From(ctx)

	resolved := model.ChangeSet{}
	var failed []*model.ChangeRecord

	for _, change := range changes.Records() {
		rec := *change
		id, err := resolveOne(ctx, resolve, rec.Name)
		if err != nil {
			rec.Err = goerr.Wrap(err, "failed to resolve repository id",
				goerr.V("name", rec.Name),
				goerr.V("path", rec.Path),
				goerr.T(types.ErrTagResolution),
			)
			logger.Warn("Repository resolution failed",
				"name", rec.Name,
				"error", err,
			)
			failed = append(failed, &rec)
			continue
		}

		rec.RepositoryID = id
		resolved[rec.Name] = &rec
		logger.Debug("Repository resolved", "name", rec.Name, "repository_id", id)

		if cfg.store != nil {
			artifact := &model.RepositoryArtifact{
				Name:         rec.Name,
				Owner:        cfg.owner,
				RepositoryID: id,
				RunID:        cfg.runID,
				ResolvedAt:   cfg.now(),
			}
			if err := cfg.store.PutRepository(ctx, artifact); err != nil {
				logger.Warn("Failed to save repository artifact",
					"name", rec.Name,
					"error", err,
				)
			}
		}
	}

	return resolved, failed
}

func resolveOne(ctx context.Context, resolve RepositoryResolver, name string) (id model.RepositoryID, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("repository resolver panicked", goerr.V("recover", r))
		}
	}()

	id, err = resolve(ctx, name)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", goerr.New("empty repository id", goerr.V("name", name))
	}
	return id, nil
}
