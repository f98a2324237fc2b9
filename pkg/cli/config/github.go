package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/types"
	githubinfra "github.com/m-mizutani/subtag/pkg/infra/github"
)

// GitHub holds GitHub API configuration
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	APIURL         string
	GraphQLURL     string
	CallTimeout    time.Duration
	MaxRetries     int
	RateLimit      float64
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token with permission to read the parent and create releases in submodules",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SUBTAG_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID, used instead of a token together with installation ID and private key",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("SUBTAG_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("SUBTAG_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key in PEM format",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("SUBTAG_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API root for GitHub Enterprise, e.g. https://github.example.com/api/v3/",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("SUBTAG_GITHUB_API_URL"),
		},
		&cli.StringFlag{
			Name:        "github-graphql-url",
			Usage:       "GitHub GraphQL endpoint",
			Value:       githubinfra.DefaultGraphQLURL,
			Destination: &c.GraphQLURL,
			Sources:     cli.EnvVars("SUBTAG_GITHUB_GRAPHQL_URL"),
		},
		&cli.DurationFlag{
			Name:        "call-timeout",
			Usage:       "Timeout of a single GitHub API call",
			Value:       githubinfra.DefaultCallTimeout,
			Destination: &c.CallTimeout,
			Sources:     cli.EnvVars("SUBTAG_CALL_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:        "max-retries",
			Usage:       "Retries of a failed read query, mutations are never retried",
			Value:       githubinfra.DefaultMaxRetries,
			Destination: &c.MaxRetries,
			Sources:     cli.EnvVars("SUBTAG_MAX_RETRIES"),
		},
		&cli.FloatFlag{
			Name:        "rate-limit",
			Usage:       "Maximum GitHub API requests per second, 0 for unlimited",
			Destination: &c.RateLimit,
			Sources:     cli.EnvVars("SUBTAG_RATE_LIMIT"),
		},
	}
}

// NewGateway builds the GitHub gateway from the configuration
func (c *GitHub) NewGateway() (interfaces.Gateway, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	opts := []githubinfra.Option{
		githubinfra.WithGraphQLURL(c.GraphQLURL),
		githubinfra.WithCallTimeout(c.CallTimeout),
		githubinfra.WithRateLimit(c.RateLimit),
	}
	if c.APIURL != "" {
		opts = append(opts, githubinfra.WithBaseURL(c.APIURL))
	}
	if c.MaxRetries >= 0 {
		opts = append(opts, githubinfra.WithMaxRetries(uint64(c.MaxRetries)))
	}

	if c.useApp() {
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, []byte(c.PrivateKey), opts...)
	}
	return githubinfra.NewClient(c.Token, opts...)
}

func (c *GitHub) useApp() bool {
	return c.AppID != 0 || c.InstallationID != 0 || c.PrivateKey != ""
}

// Validate checks that exactly one way of authentication is configured
func (c *GitHub) Validate() error {
	if !c.useApp() {
		if c.Token == "" {
			return goerr.New("--github-token or GitHub App flags are required", goerr.T(types.ErrTagInvalidConfig))
		}
		return nil
	}

	if c.Token != "" {
		return goerr.New("--github-token and GitHub App flags are exclusive", goerr.T(types.ErrTagInvalidConfig))
	}
	if c.AppID == 0 || c.InstallationID == 0 || c.PrivateKey == "" {
		return goerr.New("--github-app-id, --github-installation-id and --github-private-key must be set together",
			goerr.V("app_id", c.AppID),
			goerr.V("installation_id", c.InstallationID),
			goerr.T(types.ErrTagInvalidConfig))
	}
	return nil
}
