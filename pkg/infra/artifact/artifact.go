package artifact

import (
	"context"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

// Store is an artifact store holding a connection that must be released
type Store interface {
	interfaces.ArtifactStore
	Close() error
}

// New opens the artifact store addressed by uri.
//
//	dir:///var/lib/subtag or a bare path   local directory
//	gs://bucket/prefix                      Cloud Storage
//	firestore://project/collection          Firestore
func New(ctx context.Context, uri string, credentialsFile string) (Store, error) {
	if uri == "" {
		return nil, goerr.New("artifact destination is empty", goerr.T(types.ErrTagInvalidConfig))
	}
	if !strings.Contains(uri, "://") {
		return NewDir(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid artifact destination", goerr.V("uri", uri), goerr.T(types.ErrTagInvalidConfig))
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	switch u.Scheme {
	case "dir", "file":
		return NewDir(u.Host + u.Path), nil

	case "gs":
		if u.Host == "" {
			return nil, goerr.New("bucket is required", goerr.V("uri", uri), goerr.T(types.ErrTagInvalidConfig))
		}
		return NewGCS(ctx, u.Host, strings.Trim(u.Path, "/"), opts...)

	case "firestore":
		collection := strings.Trim(u.Path, "/")
		if u.Host == "" || collection == "" {
			return nil, goerr.New("project and collection are required", goerr.V("uri", uri), goerr.T(types.ErrTagInvalidConfig))
		}
		return NewFirestore(ctx, u.Host, collection, opts...)

	default:
		return nil, goerr.New("unsupported artifact scheme", goerr.V("scheme", u.Scheme), goerr.T(types.ErrTagInvalidConfig))
	}
}

// objectName is the file or object name used for one repository
func objectName(artifact *model.RepositoryArtifact) string {
	return artifact.Name + "_repo_id.json"
}
