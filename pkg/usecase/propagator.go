package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
	"github.com/m-mizutani/subtag/pkg/utils/errutil"
)

const (
	DefaultSubmoduleTagDepth = 10
	DefaultConcurrency       = 1
)

// Propagator creates tags in changed submodule repositories
type Propagator struct {
	gateway     interfaces.Gateway
	strategy    interfaces.TagStrategy
	owner       string
	tagFilter   string
	tagDepth    int
	concurrency int
	dryRun      bool
}

// PropagatorOption configures a Propagator
type PropagatorOption func(*Propagator)

// WithSubmoduleTagFilter sets the name filter for submodule tag history
func WithSubmoduleTagFilter(filter string) PropagatorOption {
	return func(p *Propagator) {
		p.tagFilter = filter
	}
}

// WithSubmoduleTagDepth sets how many recent submodule tags are fetched
func WithSubmoduleTagDepth(depth int) PropagatorOption {
	return func(p *Propagator) {
		if depth > 0 {
			p.tagDepth = depth
		}
	}
}

// WithConcurrency sets how many submodules are processed at once
func WithConcurrency(n int) PropagatorOption {
	return func(p *Propagator) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithDryRun stops every submodule after tag derivation
func WithDryRun(dryRun bool) PropagatorOption {
	return func(p *Propagator) {
		p.dryRun = dryRun
	}
}

// NewPropagator creates a Propagator for submodule repositories owned by owner
func NewPropagator(gateway interfaces.Gateway, strategy interfaces.TagStrategy, owner string, opts ...PropagatorOption) *Propagator {
	p := &Propagator{
		gateway:     gateway,
		strategy:    strategy,
		owner:       owner,
		tagDepth:    DefaultSubmoduleTagDepth,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// tracker drives a SubmoduleResult through the propagation states
type tracker struct {
	result model.SubmoduleResult
}

func (t *tracker) move(next model.PropagationState) {
	if !t.result.State.CanTransitionTo(next) {
		panic(fmt.Sprintf("invalid propagation transition %s -> %s", t.result.State, next))
	}
	t.result.State = next
}

func (t *tracker) fail(ctx context.Context, err error) model.SubmoduleResult {
	errutil.Handle(ctx, "submodule not tagged", err)
	t.move(model.StateFailed)
	t.result.Error = err.Error()
	t.result.ErrorKind = types.ErrorKind(err)
	return t.result
}

// Propagate derives and creates the tag of one change. Failures are reported in the result.
func (p *Propagator) Propagate(ctx context.Context, change *model.ChangeRecord, parentTag string) model.SubmoduleResult {
	logger := ctxlog.From(ctx).With("submodule", change.Name)
	repo := model.RepoRef{Owner: p.owner, Name: change.Name}

	t := &tracker{result: model.SubmoduleResult{
		Name:         change.Name,
		Path:         change.Path,
		CommitID:     change.NewCommitID,
		RepositoryID: change.RepositoryID,
		State:        model.StatePending,
	}}

	tags, err := p.gateway.RecentTags(ctx, repo, p.tagDepth, p.tagFilter)
	if err != nil {
		return t.fail(ctx, goerr.Wrap(err, "failed to fetch submodule tags",
			goerr.V("repo", repo.String()),
			goerr.T(types.ErrTagTransport),
		))
	}
	t.move(model.StateTagsFetched)

	newTag, err := p.strategy.NextTag(ctx, model.TagDerivation{
		Submodule:    change.Name,
		ExistingTags: tags,
		ParentTag:    parentTag,
	})
	if err == nil && newTag == "" {
		err = goerr.New("strategy derived an empty tag name", goerr.T(types.ErrTagNoApplicableStrategy))
	}
	if err != nil {
		logger.Debug("No tag derived", "existing_tags", model.TagNames(tags))
		return t.fail(ctx, err)
	}
	t.move(model.StateTagDerived)
	t.result.Tag = newTag

	if p.dryRun {
		logger.Info("Dry run, tag not created", "tag", newTag, "commit", change.NewCommitID)
		t.move(model.StatePlanned)
		return t.result
	}

	t.move(model.StateCreating)
	req := model.TagRequest{
		Name:            newTag,
		TargetCommitish: change.NewCommitID,
		Body:            fmt.Sprintf("Pinned by %s", parentTag),
	}
	if err := p.gateway.CreateTag(ctx, repo, req); err != nil {
		return t.fail(ctx, goerr.Wrap(err, "failed to create tag",
			goerr.V("repo", repo.String()),
			goerr.V("tag", newTag),
			goerr.T(types.ErrTagTagCreation),
		))
	}

	t.move(model.StateCreated)
	logger.Info("Tag created", "tag", newTag, "commit", change.NewCommitID)
	return t.result
}

// PropagateAll propagates every change, ordered by name. Results keep that order.
func (p *Propagator) PropagateAll(ctx context.Context, changes model.ChangeSet, parentTag string) []model.SubmoduleResult {
	records := changes.Records()
	results := make([]model.SubmoduleResult, len(records))

	var eg errgroup.Group
	eg.SetLimit(p.concurrency)
	for i, change := range records {
		eg.Go(func() error {
			results[i] = p.Propagate(ctx, change, parentTag)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
