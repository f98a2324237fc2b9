package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
	"github.com/m-mizutani/subtag/pkg/utils/errutil"
)

// PipelineConfig holds the parameters of a propagation run
type PipelineConfig struct {
	Parent         model.RepoRef
	SubmoduleOwner string
	TagFilter      string
	DiffMode       DiffMode
}

type pipeline struct {
	cfg        PipelineConfig
	gateway    interfaces.Gateway
	propagator *Propagator
	store      interfaces.ArtifactStore
	notifier   interfaces.Notifier
	dryRun     bool
	now        func() time.Time
}

// PipelineOption configures the pipeline
type PipelineOption func(*pipeline)

// WithPipelineArtifactStore records resolved repository ids
func WithPipelineArtifactStore(store interfaces.ArtifactStore) PipelineOption {
	return func(p *pipeline) {
		p.store = store
	}
}

// WithNotifier sends each report through notifier
func WithNotifier(notifier interfaces.Notifier) PipelineOption {
	return func(p *pipeline) {
		p.notifier = notifier
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) PipelineOption {
	return func(p *pipeline) {
		p.now = now
	}
}

// NewPipeline composes differ, reconciler and propagator over gateway
func NewPipeline(cfg PipelineConfig, gateway interfaces.Gateway, propagator *Propagator, opts ...PipelineOption) interfaces.PropagationUseCase {
	if cfg.SubmoduleOwner == "" {
		cfg.SubmoduleOwner = cfg.Parent.Owner
	}
	p := &pipeline{
		cfg:        cfg,
		gateway:    gateway,
		propagator: propagator,
		dryRun:     propagator.dryRun,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one propagation
func (p *pipeline) Run(ctx context.Context, input model.RunInput) (*model.RunReport, error) {
	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID)
	ctx = ctxlog.With(ctx, logger)

	report := &model.RunReport{
		RunID:      runID,
		ParentRepo: p.cfg.Parent.String(),
		DryRun:     p.dryRun,
		StartedAt:  p.now(),
	}

	tags, err := p.gateway.RecentTags(ctx, p.cfg.Parent, 2, p.cfg.TagFilter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch parent tags", goerr.V("parent", report.ParentRepo))
	}
	if len(tags) < 2 {
		return nil, goerr.New("parent repository needs two matching tags",
			goerr.V("parent", report.ParentRepo),
			goerr.V("filter", p.cfg.TagFilter),
			goerr.V("tags", model.TagNames(tags)),
		)
	}
	report.NewTag, report.OldTag = tags[0].Name, tags[1].Name
	if input.TriggerTag != "" && input.TriggerTag != report.NewTag {
		return nil, goerr.New("trigger tag is not the most recent parent tag",
			goerr.V("trigger", input.TriggerTag),
			goerr.V("newest", report.NewTag),
		)
	}

	logger.Info("Comparing parent tags",
		"parent", report.ParentRepo,
		"new_tag", report.NewTag,
		"old_tag", report.OldTag,
	)

	newSnap, err := p.gateway.SubmodulePointers(ctx, p.cfg.Parent, report.NewTag)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch submodules", goerr.V("tag", report.NewTag))
	}
	oldSnap, err := p.gateway.SubmodulePointers(ctx, p.cfg.Parent, report.OldTag)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch submodules", goerr.V("tag", report.OldTag))
	}

	changes, err := DiffSnapshots(oldSnap, newSnap, p.cfg.DiffMode)
	if err != nil {
		return nil, err
	}
	report.Changed = changes.Names()
	logger.Info("Changed submodules detected", "changed", report.Changed)

	var reconcileOpts []ReconcileOption
	if p.store != nil {
		reconcileOpts = append(reconcileOpts, WithArtifactStore(p.store, p.cfg.SubmoduleOwner, runID))
	}
	resolved, failed := Reconcile(ctx, changes, GatewayResolver(p.gateway, p.cfg.SubmoduleOwner), reconcileOpts...)
	for _, rec := range failed {
		errutil.Handle(ctx, "submodule dropped", rec.Err)
		report.ResolutionFailures = append(report.ResolutionFailures, model.SubmoduleResult{
			Name:      rec.Name,
			Path:      rec.Path,
			CommitID:  rec.NewCommitID,
			State:     model.StateFailed,
			Error:     rec.Err.Error(),
			ErrorKind: types.ErrorKind(rec.Err),
		})
	}

	report.Results = p.propagator.PropagateAll(ctx, resolved, report.NewTag)
	report.FinishedAt = p.now()

	summary := report.Summary()
	logger.Info("Propagation finished",
		"changed", summary.Changed,
		"created", summary.Created,
		"planned", summary.Planned,
		"failed", summary.Failed,
	)

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, report); err != nil {
			errutil.Handle(ctx, "failed to notify report", err)
		}
	}

	return report, nil
}
