package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
	"github.com/m-mizutani/subtag/pkg/usecase"
)

func changeSet(names ...string) model.ChangeSet {
	cs := model.ChangeSet{}
	for _, name := range names {
		cs[name] = &model.ChangeRecord{Name: name, Path: "mods/" + name, NewCommitID: "sha-" + name}
	}
	return cs
}

func TestReconcile_FailureIsolation(t *testing.T) {
	ctx := context.Background()
	resolve := func(ctx context.Context, name string) (model.RepositoryID, error) {
		if name == "a" {
			return "", errors.New("malformed payload")
		}
		return model.RepositoryID("id-" + name), nil
	}

	resolved, failed := usecase.Reconcile(ctx, changeSet("a", "b"), resolve)

	gt.Value(t, resolved.Names()).Equal([]string{"b"})
	gt.Value(t, resolved["b"].RepositoryID).Equal(model.RepositoryID("id-b"))
	gt.A(t, failed).Length(1)
	gt.Value(t, failed[0].Name).Equal("a")
	gt.True(t, goerr.HasTag(failed[0].Err, types.ErrTagResolution))
}

func TestReconcile_OrderDoesNotMatter(t *testing.T) {
	ctx := context.Background()
	bad := map[string]bool{"c": true, "a": true}
	resolve := func(ctx context.Context, name string) (model.RepositoryID, error) {
		if bad[name] {
			return "", errors.New("unknown repository")
		}
		return model.RepositoryID("id-" + name), nil
	}

	for i := 0; i < 5; i++ {
		resolved, failed := usecase.Reconcile(ctx, changeSet("d", "c", "b", "a"), resolve)
		gt.Value(t, resolved.Names()).Equal([]string{"b", "d"})
		gt.A(t, failed).Length(2)
		gt.Value(t, failed[0].Name).Equal("a")
		gt.Value(t, failed[1].Name).Equal("c")
	}
}

func TestReconcile_EmptyIDAndPanicAreFailures(t *testing.T) {
	ctx := context.Background()
	resolve := func(ctx context.Context, name string) (model.RepositoryID, error) {
		switch name {
		case "empty":
			return "", nil
		case "boom":
			panic("nil map")
		}
		return "id", nil
	}

	resolved, failed := usecase.Reconcile(ctx, changeSet("empty", "boom", "ok"), resolve)
	gt.Value(t, resolved.Names()).Equal([]string{"ok"})
	gt.A(t, failed).Length(2)
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	input := changeSet("a")
	resolve := func(ctx context.Context, name string) (model.RepositoryID, error) {
		return "id-a", nil
	}

	usecase.Reconcile(ctx, input, resolve)
	gt.Value(t, input["a"].RepositoryID).Equal(model.RepositoryID(""))
}

func TestReconcile_ArtifactStore(t *testing.T) {
	ctx := context.Background()
	store := &MockArtifactStore{
		putFunc: func(ctx context.Context, artifact *model.RepositoryArtifact) error {
			if artifact.Name == "b" {
				return errors.New("disk full")
			}
			return nil
		},
	}
	resolve := func(ctx context.Context, name string) (model.RepositoryID, error) {
		return model.RepositoryID("id-" + name), nil
	}

	resolved, failed := usecase.Reconcile(ctx, changeSet("a", "b"), resolve,
		usecase.WithArtifactStore(store, "logicatcore", "run-1"))

	// store failures never drop a change
	gt.Value(t, resolved.Names()).Equal([]string{"a", "b"})
	gt.A(t, failed).Length(0)
	gt.A(t, store.artifacts).Length(2)
	gt.Value(t, store.artifacts[0].Owner).Equal("logicatcore")
	gt.Value(t, store.artifacts[0].RunID).Equal("run-1")
	gt.Value(t, store.artifacts[0].RepositoryID).Equal(model.RepositoryID("id-a"))
	gt.True(t, time.Since(store.artifacts[0].ResolvedAt) < time.Minute)
}

func TestGatewayResolver(t *testing.T) {
	gw := &MockGateway{
		repositoryIDFunc: func(ctx context.Context, repo model.RepoRef) (model.RepositoryID, error) {
			gt.Value(t, repo.Owner).Equal("logicatcore")
			return model.RepositoryID("id-" + repo.Name), nil
		},
	}

	id, err := usecase.GatewayResolver(gw, "logicatcore")(context.Background(), "cdd-bai")
	gt.NoError(t, err)
	gt.Value(t, id).Equal(model.RepositoryID("id-cdd-bai"))
}
