package artifact

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// Firestore keeps the latest artifact of each repository as a document
type Firestore struct {
	client     *firestore.Client
	collection string
}

func NewFirestore(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("project", projectID))
	}

	return &Firestore{client: client, collection: collection}, nil
}

// documentID keeps owner and name apart; both are restricted to [A-Za-z0-9._-]
func documentID(artifact *model.RepositoryArtifact) string {
	return artifact.Owner + ":" + artifact.Name
}

// PutRepository implements interfaces.ArtifactStore
func (f *Firestore) PutRepository(ctx context.Context, artifact *model.RepositoryArtifact) error {
	docID := documentID(artifact)
	if _, err := f.client.Collection(f.collection).Doc(docID).Set(ctx, artifact); err != nil {
		return goerr.Wrap(err, "failed to save artifact", goerr.V("collection", f.collection), goerr.V("doc", docID))
	}

	ctxlog.From(ctx).Debug("artifact saved", "collection", f.collection, "doc", docID)
	return nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
