package artifact

import (
	"context"
	"encoding/json"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// GCS writes one JSON object per repository under a bucket prefix
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCS(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// PutRepository implements interfaces.ArtifactStore
func (g *GCS) PutRepository(ctx context.Context, artifact *model.RepositoryArtifact) error {
	name := path.Join(g.prefix, objectName(artifact))

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache, no-store, must-revalidate"

	if err := json.NewEncoder(w).Encode(artifact); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write artifact object", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close artifact object", goerr.V("bucket", g.bucket), goerr.V("object", name))
	}

	ctxlog.From(ctx).Debug("artifact uploaded", "bucket", g.bucket, "object", name)
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
