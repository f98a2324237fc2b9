package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
	"github.com/m-mizutani/subtag/pkg/usecase"
)

var parent = model.RepoRef{Owner: "logicatcore", Name: "parent"}

// newParentGateway serves two parent tags and their snapshots, other repositories get submoduleTags
func newParentGateway(oldSnap, newSnap *model.Snapshot) *MockGateway {
	return &MockGateway{
		recentTagsFunc: func(ctx context.Context, repo model.RepoRef, limit int, filter string) ([]model.TagRef, error) {
			if repo == parent {
				return []model.TagRef{{Name: newSnap.Tag}, {Name: oldSnap.Tag}}, nil
			}
			return submoduleTags(ctx, repo, limit, filter)
		},
		submodulePointersFunc: func(ctx context.Context, repo model.RepoRef, tag string) (*model.Snapshot, error) {
			switch tag {
			case newSnap.Tag:
				return newSnap, nil
			case oldSnap.Tag:
				return oldSnap, nil
			}
			return nil, errors.New("unknown tag")
		},
		repositoryIDFunc: func(ctx context.Context, repo model.RepoRef) (model.RepositoryID, error) {
			return model.RepositoryID("id-" + repo.Name), nil
		},
		createTagFunc: func(ctx context.Context, repo model.RepoRef, req model.TagRequest) error {
			return nil
		},
	}
}

func mirrorStrategy() *MockStrategy {
	return &MockStrategy{
		nextTagFunc: func(ctx context.Context, input model.TagDerivation) (string, error) {
			return input.ParentTag, nil
		},
	}
}

func newPipeline(gw *MockGateway, opts ...usecase.PipelineOption) (*MockStrategy, func(ctx context.Context, in model.RunInput) (*model.RunReport, error)) {
	strategy := mirrorStrategy()
	p := usecase.NewPipeline(usecase.PipelineConfig{
		Parent:    parent,
		TagFilter: "CSB",
		DiffMode:  usecase.DiffModeStrict,
	}, gw, usecase.NewPropagator(gw, strategy, parent.Owner), opts...)
	return strategy, p.Run
}

func TestPipeline_Run_SingleChange(t *testing.T) {
	ctx := context.Background()
	gw := newParentGateway(
		snapshot("CSB.47", "a", "c1", "b", "c2"),
		snapshot("CSB.48", "a", "c1", "b", "c3"),
	)
	notifier := &MockNotifier{}
	_, run := newPipeline(gw, usecase.WithNotifier(notifier))

	report, err := run(ctx, model.RunInput{})
	gt.NoError(t, err)

	gt.Value(t, report.NewTag).Equal("CSB.48")
	gt.Value(t, report.OldTag).Equal("CSB.47")
	gt.Value(t, report.ParentRepo).Equal("logicatcore/parent")
	gt.Value(t, report.Changed).Equal([]string{"b"})
	gt.A(t, report.Results).Length(1)
	gt.Value(t, report.Results[0].CommitID).Equal("c3")
	gt.Value(t, report.Results[0].Tag).Equal("CSB.48")
	gt.Value(t, report.Results[0].State).Equal(model.StateCreated)
	gt.False(t, report.Failed())
	gt.Value(t, report.RunID).NotEqual("")

	gt.A(t, gw.createCalls).Length(1)
	gt.Value(t, gw.createCalls[0].Req.TargetCommitish).Equal("c3")
	gt.A(t, notifier.reports).Length(1)
}

func TestPipeline_Run_ResolutionFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	gw := newParentGateway(
		snapshot("CSB.47", "mods/a", "c1", "mods/b", "c2"),
		snapshot("CSB.48", "mods/a", "c5", "mods/b", "c6"),
	)
	gw.repositoryIDFunc = func(ctx context.Context, repo model.RepoRef) (model.RepositoryID, error) {
		if repo.Name == "a" {
			return "", goerr.New("malformed payload", goerr.T(types.ErrTagTransport))
		}
		return "id-b", nil
	}
	_, run := newPipeline(gw)

	report, err := run(ctx, model.RunInput{})
	gt.NoError(t, err)

	gt.Value(t, report.Changed).Equal([]string{"a", "b"})
	gt.A(t, report.ResolutionFailures).Length(1)
	gt.Value(t, report.ResolutionFailures[0].Name).Equal("a")
	gt.Value(t, report.ResolutionFailures[0].ErrorKind).Equal(types.KindResolution)
	gt.A(t, report.Results).Length(1)
	gt.Value(t, report.Results[0].Name).Equal("b")
	gt.Value(t, report.Results[0].State).Equal(model.StateCreated)
	gt.True(t, report.Failed())

	gt.A(t, gw.createCalls).Length(1)
	gt.Value(t, gw.createCalls[0].Repo.Name).Equal("b")
}

func TestPipeline_Run_CreationFailureContinues(t *testing.T) {
	ctx := context.Background()
	gw := newParentGateway(
		snapshot("CSB.47", "a", "c1", "b", "c2"),
		snapshot("CSB.48", "a", "c5", "b", "c6"),
	)
	gw.createTagFunc = func(ctx context.Context, repo model.RepoRef, req model.TagRequest) error {
		if repo.Name == "a" {
			return goerr.New("403 Resource not accessible", goerr.T(types.ErrTagTransport))
		}
		return nil
	}
	_, run := newPipeline(gw)

	report, err := run(ctx, model.RunInput{})
	gt.NoError(t, err)
	gt.A(t, report.Results).Length(2)
	gt.Value(t, report.Results[0].State).Equal(model.StateFailed)
	gt.Value(t, report.Results[1].State).Equal(model.StateCreated)
	gt.Value(t, report.Summary().Failed).Equal(1)
	gt.Value(t, report.Summary().Created).Equal(1)
}

func TestPipeline_Run_NoChanges(t *testing.T) {
	ctx := context.Background()
	gw := newParentGateway(
		snapshot("CSB.47", "x/y/mod1", "c1"),
		snapshot("CSB.48", "x/z/mod1", "c1"),
	)
	strategy, run := newPipeline(gw)

	report, err := run(ctx, model.RunInput{})
	gt.NoError(t, err)
	gt.A(t, report.Changed).Length(0)
	gt.A(t, report.Results).Length(0)
	gt.A(t, gw.idCalls).Length(0)
	gt.A(t, strategy.calls).Length(0)
	gt.False(t, report.Failed())
}

func TestPipeline_Run_StructuralFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("parent tags unavailable", func(t *testing.T) {
		gw := newParentGateway(snapshot("CSB.47"), snapshot("CSB.48"))
		gw.recentTagsFunc = func(ctx context.Context, repo model.RepoRef, limit int, filter string) ([]model.TagRef, error) {
			return nil, goerr.New("502 Bad Gateway", goerr.T(types.ErrTagTransport))
		}
		_, run := newPipeline(gw)

		report, err := run(ctx, model.RunInput{})
		gt.Error(t, err)
		gt.Value(t, report).Nil()
	})

	t.Run("only one parent tag", func(t *testing.T) {
		gw := newParentGateway(snapshot("CSB.47"), snapshot("CSB.48"))
		gw.recentTagsFunc = func(ctx context.Context, repo model.RepoRef, limit int, filter string) ([]model.TagRef, error) {
			gt.Value(t, limit).Equal(2)
			gt.Value(t, filter).Equal("CSB")
			return []model.TagRef{{Name: "CSB.48"}}, nil
		}
		_, run := newPipeline(gw)

		_, err := run(ctx, model.RunInput{})
		gt.Error(t, err)
	})

	t.Run("snapshot mismatch", func(t *testing.T) {
		gw := newParentGateway(
			snapshot("CSB.47", "a", "c1"),
			snapshot("CSB.48", "a", "c1", "b", "c2"),
		)
		_, run := newPipeline(gw)

		_, err := run(ctx, model.RunInput{})
		gt.True(t, goerr.HasTag(err, types.ErrTagSnapshotMismatch))
		gt.A(t, gw.createCalls).Length(0)
	})

	t.Run("trigger tag is not the newest", func(t *testing.T) {
		gw := newParentGateway(snapshot("CSB.47", "a", "c1"), snapshot("CSB.48", "a", "c2"))
		_, run := newPipeline(gw)

		_, err := run(ctx, model.RunInput{TriggerTag: "CSB.49"})
		gt.Error(t, err)
		gt.A(t, gw.createCalls).Length(0)
	})
}

func TestPipeline_Run_ArtifactStore(t *testing.T) {
	ctx := context.Background()
	gw := newParentGateway(
		snapshot("CSB.47", "a", "c1"),
		snapshot("CSB.48", "a", "c2"),
	)
	store := &MockArtifactStore{}
	_, run := newPipeline(gw, usecase.WithPipelineArtifactStore(store))

	report, err := run(ctx, model.RunInput{TriggerTag: "CSB.48"})
	gt.NoError(t, err)
	gt.A(t, store.artifacts).Length(1)
	gt.Value(t, store.artifacts[0].Name).Equal("a")
	gt.Value(t, store.artifacts[0].RunID).Equal(report.RunID)
}
