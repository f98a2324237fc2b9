package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// MockGateway is a mock implementation of interfaces.Gateway
type MockGateway struct {
	recentTagsFunc        func(ctx context.Context, repo model.RepoRef, limit int, filter string) ([]model.TagRef, error)
	submodulePointersFunc func(ctx context.Context, repo model.RepoRef, tag string) (*model.Snapshot, error)
	repositoryIDFunc      func(ctx context.Context, repo model.RepoRef) (model.RepositoryID, error)
	createTagFunc         func(ctx context.Context, repo model.RepoRef, req model.TagRequest) error

	mu          sync.Mutex
	createCalls []MockCreateCall
	idCalls     []string
}

type MockCreateCall struct {
	Repo model.RepoRef
	Req  model.TagRequest
}

func (m *MockGateway) RecentTags(ctx context.Context, repo model.RepoRef, limit int, filter string) ([]model.TagRef, error) {
	if m.recentTagsFunc != nil {
		return m.recentTagsFunc(ctx, repo, limit, filter)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGateway) SubmodulePointers(ctx context.Context, repo model.RepoRef, tag string) (*model.Snapshot, error) {
	if m.submodulePointersFunc != nil {
		return m.submodulePointersFunc(ctx, repo, tag)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGateway) RepositoryID(ctx context.Context, repo model.RepoRef) (model.RepositoryID, error) {
	m.mu.Lock()
	m.idCalls = append(m.idCalls, repo.Name)
	m.mu.Unlock()
	if m.repositoryIDFunc != nil {
		return m.repositoryIDFunc(ctx, repo)
	}
	return "", errors.New("mock not configured")
}

func (m *MockGateway) CreateTag(ctx context.Context, repo model.RepoRef, req model.TagRequest) error {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, MockCreateCall{Repo: repo, Req: req})
	m.mu.Unlock()
	if m.createTagFunc != nil {
		return m.createTagFunc(ctx, repo, req)
	}
	return errors.New("mock not configured")
}

// MockStrategy is a mock implementation of interfaces.TagStrategy
type MockStrategy struct {
	nextTagFunc func(ctx context.Context, input model.TagDerivation) (string, error)
	calls       []model.TagDerivation
	mu          sync.Mutex
}

func (m *MockStrategy) NextTag(ctx context.Context, input model.TagDerivation) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()
	if m.nextTagFunc != nil {
		return m.nextTagFunc(ctx, input)
	}
	return "", errors.New("mock not configured")
}

// MockArtifactStore records artifacts in memory
type MockArtifactStore struct {
	putFunc   func(ctx context.Context, artifact *model.RepositoryArtifact) error
	artifacts []*model.RepositoryArtifact
}

func (m *MockArtifactStore) PutRepository(ctx context.Context, artifact *model.RepositoryArtifact) error {
	m.artifacts = append(m.artifacts, artifact)
	if m.putFunc != nil {
		return m.putFunc(ctx, artifact)
	}
	return nil
}

// MockNotifier records reports
type MockNotifier struct {
	reports []*model.RunReport
}

func (m *MockNotifier) Notify(ctx context.Context, report *model.RunReport) error {
	m.reports = append(m.reports, report)
	return nil
}

func snapshot(tag string, pairs ...string) *model.Snapshot {
	snap := &model.Snapshot{Tag: tag}
	for i := 0; i+1 < len(pairs); i += 2 {
		snap.Pointers = append(snap.Pointers, model.SubmodulePointer{Path: pairs[i], CommitID: pairs[i+1]})
	}
	return snap
}
