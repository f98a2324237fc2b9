package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/subtag/pkg/infra/artifact"
	"github.com/m-mizutani/subtag/pkg/reporter"
)

// Output holds report and artifact destinations
type Output struct {
	Format             string
	Artifact           string
	GCPCredentialsFile string
}

// Flags returns CLI flags for output configuration
func (c *Output) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Report format (table, json)",
			Value:       reporter.FormatTable,
			Destination: &c.Format,
			Sources:     cli.EnvVars("SUBTAG_OUTPUT"),
		},
		&cli.StringFlag{
			Name:        "artifact",
			Usage:       "Where resolved repository ids are recorded: a directory, dir://path, gs://bucket/prefix or firestore://project/collection",
			Destination: &c.Artifact,
			Sources:     cli.EnvVars("SUBTAG_ARTIFACT"),
		},
		&cli.StringFlag{
			Name:        "gcp-credentials-file",
			Usage:       "Service account key for Cloud Storage and Firestore (default: application default credentials)",
			Destination: &c.GCPCredentialsFile,
			Sources:     cli.EnvVars("SUBTAG_GCP_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"),
		},
	}
}

// Reporter returns the reporter for the chosen format
func (c *Output) Reporter() (reporter.Reporter, error) {
	return reporter.New(c.Format)
}

// ArtifactStore opens the artifact store, nil when no destination is set
func (c *Output) ArtifactStore(ctx context.Context) (artifact.Store, error) {
	if c.Artifact == "" {
		return nil, nil
	}
	return artifact.New(ctx, c.Artifact, c.GCPCredentialsFile)
}
