package model

import (
	"fmt"
	"time"
)

// RepoRef identifies a repository on the hosting service
type RepoRef struct {
	Owner string
	Name  string
}

func (r RepoRef) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// RepositoryID is the opaque node id of a repository (e.g. "MDEwOlJlcG9zaXRvcnkx")
type RepositoryID string

// RepositoryArtifact is the audit record written for each resolved repository
type RepositoryArtifact struct {
	Name         string       `json:"name" firestore:"name"`
	Owner        string       `json:"owner" firestore:"owner"`
	RepositoryID RepositoryID `json:"repository_id" firestore:"repository_id"`
	RunID        string       `json:"run_id" firestore:"run_id"`
	ResolvedAt   time.Time    `json:"resolved_at" firestore:"resolved_at"`
}
