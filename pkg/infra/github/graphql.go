package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

const submodulePageSize = 100

const queryRecentTags = `query RecentTags($owner: String!, $name: String!, $first: Int!, $query: String!) {
  repository(owner: $owner, name: $name) {
    refs(first: $first, orderBy: {field: TAG_COMMIT_DATE, direction: DESC}, query: $query, refPrefix: "refs/tags/") {
      nodes {
        name
        target {
          oid
        }
      }
    }
  }
}`

// Annotated tags point at a Tag object wrapping the commit.
const querySubmodules = `query Submodules($owner: String!, $name: String!, $ref: String!, $first: Int!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    ref(qualifiedName: $ref) {
      name
      target {
        ...submoduleTable
        ... on Tag {
          target {
            ...submoduleTable
          }
        }
      }
    }
  }
}

fragment submoduleTable on Commit {
  submodules(first: $first, after: $cursor) {
    nodes {
      path
      subprojectCommitOid
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

const queryRepositoryID = `query RepositoryID($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    id
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphqlErrors struct {
	errs []graphqlError
}

func (e *graphqlErrors) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

type graphqlResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// query posts a GraphQL query through the go-github client so that authentication,
// status checks and rate limit errors are shared with REST calls
func query[T any](ctx context.Context, c *client, q string, vars map[string]any) (*T, error) {
	var resp graphqlResponse[T]
	err := c.retry(ctx, func(ctx context.Context) error {
		resp = graphqlResponse[T]{}
		req, err := c.githubClient.NewRequest(http.MethodPost, c.graphqlURL, &graphqlRequest{Query: q, Variables: vars})
		if err != nil {
			return err
		}
		if _, err := c.githubClient.Do(ctx, req, &resp); err != nil {
			return err
		}
		if len(resp.Errors) > 0 {
			return &graphqlErrors{errs: resp.Errors}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, goerr.New("graphql response has no data")
	}
	return resp.Data, nil
}

type gqlRepository[T any] struct {
	Repository *T `json:"repository"`
}

type gqlRefs struct {
	Refs struct {
		Nodes []struct {
			Name   string `json:"name"`
			Target struct {
				Oid string `json:"oid"`
			} `json:"target"`
		} `json:"nodes"`
	} `json:"refs"`
}

// RecentTags implements interfaces.Gateway
func (c *client) RecentTags(ctx context.Context, repo model.RepoRef, limit int, filter string) ([]model.TagRef, error) {
	data, err := query[gqlRepository[gqlRefs]](ctx, c, queryRecentTags, map[string]any{
		"owner": repo.Owner,
		"name":  repo.Name,
		"first": limit,
		"query": filter,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query tags", goerr.V("repo", repo.String()), goerr.T(types.ErrTagTransport))
	}
	if data.Repository == nil {
		return nil, goerr.New("repository not found", goerr.V("repo", repo.String()), goerr.T(types.ErrTagTransport))
	}

	tags := make([]model.TagRef, 0, len(data.Repository.Refs.Nodes))
	for _, node := range data.Repository.Refs.Nodes {
		tags = append(tags, model.TagRef{Name: node.Name, Commit: node.Target.Oid})
	}
	return tags, nil
}

type gqlSubmoduleConnection struct {
	Nodes []struct {
		Path                string `json:"path"`
		SubprojectCommitOid string `json:"subprojectCommitOid"`
	} `json:"nodes"`
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
}

type gqlRef struct {
	Ref *struct {
		Name   string `json:"name"`
		Target struct {
			Submodules *gqlSubmoduleConnection `json:"submodules"`
			Target     *struct {
				Submodules *gqlSubmoduleConnection `json:"submodules"`
			} `json:"target"`
		} `json:"target"`
	} `json:"ref"`
}

func (r *gqlRef) submodules() *gqlSubmoduleConnection {
	if r.Ref == nil {
		return nil
	}
	if r.Ref.Target.Submodules != nil {
		return r.Ref.Target.Submodules
	}
	if r.Ref.Target.Target != nil {
		return r.Ref.Target.Target.Submodules
	}
	return nil
}

// SubmodulePointers implements interfaces.Gateway
func (c *client) SubmodulePointers(ctx context.Context, repo model.RepoRef, tag string) (*model.Snapshot, error) {
	snap := &model.Snapshot{Tag: tag}
	vars := map[string]any{
		"owner":  repo.Owner,
		"name":   repo.Name,
		"ref":    "refs/tags/" + tag,
		"first":  submodulePageSize,
		"cursor": nil,
	}

	for {
		data, err := query[gqlRepository[gqlRef]](ctx, c, querySubmodules, vars)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query submodules",
				goerr.V("repo", repo.String()),
				goerr.V("tag", tag),
				goerr.T(types.ErrTagTransport),
			)
		}
		if data.Repository == nil || data.Repository.Ref == nil {
			return nil, goerr.New("tag not found",
				goerr.V("repo", repo.String()),
				goerr.V("tag", tag),
				goerr.T(types.ErrTagTransport),
			)
		}

		conn := data.Repository.submodules()
		if conn == nil {
			return nil, goerr.New("tag does not point at a commit",
				goerr.V("repo", repo.String()),
				goerr.V("tag", tag),
				goerr.T(types.ErrTagTransport),
			)
		}
		for _, node := range conn.Nodes {
			snap.Pointers = append(snap.Pointers, model.SubmodulePointer{
				Path:     node.Path,
				CommitID: node.SubprojectCommitOid,
			})
		}

		if !conn.PageInfo.HasNextPage {
			return snap, nil
		}
		vars["cursor"] = conn.PageInfo.EndCursor
	}
}

type gqlRepositoryID struct {
	ID string `json:"id"`
}

// RepositoryID implements interfaces.Gateway
func (c *client) RepositoryID(ctx context.Context, repo model.RepoRef) (model.RepositoryID, error) {
	data, err := query[gqlRepository[gqlRepositoryID]](ctx, c, queryRepositoryID, map[string]any{
		"owner": repo.Owner,
		"name":  repo.Name,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to query repository id", goerr.V("repo", repo.String()), goerr.T(types.ErrTagTransport))
	}
	if data.Repository == nil || data.Repository.ID == "" {
		return "", goerr.New("repository not found", goerr.V("repo", repo.String()), goerr.T(types.ErrTagTransport))
	}
	return model.RepositoryID(data.Repository.ID), nil
}
