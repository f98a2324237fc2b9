package artifact

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// Dir writes one JSON file per repository into a local directory
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// PutRepository implements interfaces.ArtifactStore
func (d *Dir) PutRepository(ctx context.Context, artifact *model.RepositoryArtifact) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create artifact directory", goerr.V("dir", d.root))
	}

	raw, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal artifact", goerr.V("name", artifact.Name))
	}

	path := filepath.Join(d.root, objectName(artifact))
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return goerr.Wrap(err, "failed to write artifact", goerr.V("path", path))
	}

	ctxlog.From(ctx).Debug("artifact written", "path", path)
	return nil
}

func (d *Dir) Close() error { return nil }
