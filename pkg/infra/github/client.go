package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
)

const (
	DefaultGraphQLURL  = "https://api.github.com/graphql"
	DefaultCallTimeout = 30 * time.Second
	DefaultMaxRetries  = 3
)

type client struct {
	githubClient  *github.Client
	graphqlURL    string
	callTimeout   time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	limiter       *rate.Limiter
}

type config struct {
	httpClient    *http.Client
	baseURL       string
	graphqlURL    string
	callTimeout   time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	rateLimit     float64
}

// Option is a functional option for the GitHub gateway
type Option func(*config)

// WithHTTPClient replaces the HTTP client. Its transport must keep TLS verification enabled.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets the REST API root, e.g. https://github.example.com/api/v3/
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithGraphQLURL sets the GraphQL endpoint
func WithGraphQLURL(graphqlURL string) Option {
	return func(c *config) {
		c.graphqlURL = graphqlURL
	}
}

// WithCallTimeout bounds every single request
func WithCallTimeout(d time.Duration) Option {
	return func(c *config) {
		c.callTimeout = d
	}
}

// WithMaxRetries sets how many times a failed query is retried. Mutations are never retried.
func WithMaxRetries(n uint64) Option {
	return func(c *config) {
		c.maxRetries = n
	}
}

// WithRetryInterval sets the first backoff interval
func WithRetryInterval(d time.Duration) Option {
	return func(c *config) {
		c.retryInterval = d
	}
}

// WithRateLimit limits requests per second; zero or less disables the limit
func WithRateLimit(rps float64) Option {
	return func(c *config) {
		c.rateLimit = rps
	}
}

// NewClient creates a GitHub gateway authenticated with a bearer token
func NewClient(token string, opts ...Option) (interfaces.Gateway, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is required", goerr.T(types.ErrTagInvalidConfig))
	}

	cfg := newConfig(opts)
	c, err := newClient(cfg, github.NewClient(cfg.client()).WithAuthToken(token))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewAppClient creates a GitHub gateway authenticated as a GitHub App installation
func NewAppClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.Gateway, error) {
	if appID == 0 || installationID == 0 || len(privateKey) == 0 {
		return nil, goerr.New("GitHub App ID, installation ID and private key are required",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
			goerr.T(types.ErrTagInvalidConfig))
	}

	cfg := newConfig(opts)
	httpClient := cfg.client()
	parent := httpClient.Transport
	if parent == nil {
		parent = http.DefaultTransport
	}

	// Create GitHub App transport
	itr, err := ghinstallation.New(parent, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
			goerr.T(types.ErrTagInvalidConfig))
	}
	if cfg.baseURL != "" {
		itr.BaseURL = strings.TrimSuffix(cfg.baseURL, "/")
	}

	c, err := newClient(cfg, github.NewClient(&http.Client{Transport: itr, Timeout: httpClient.Timeout}))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newConfig(opts []Option) *config {
	cfg := &config{
		graphqlURL:    DefaultGraphQLURL,
		callTimeout:   DefaultCallTimeout,
		maxRetries:    DefaultMaxRetries,
		retryInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) client() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Transport: http.DefaultTransport}
}

func newClient(cfg *config, githubClient *github.Client) (*client, error) {
	if cfg.baseURL != "" {
		base := cfg.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API URL", goerr.V("url", cfg.baseURL), goerr.T(types.ErrTagInvalidConfig))
		}
		githubClient.BaseURL = u
	}
	if _, err := url.Parse(cfg.graphqlURL); err != nil {
		return nil, goerr.Wrap(err, "invalid GitHub GraphQL URL", goerr.V("url", cfg.graphqlURL), goerr.T(types.ErrTagInvalidConfig))
	}

	limit := rate.Inf
	if cfg.rateLimit > 0 {
		limit = rate.Limit(cfg.rateLimit)
	}

	return &client{
		githubClient:  githubClient,
		graphqlURL:    cfg.graphqlURL,
		callTimeout:   cfg.callTimeout,
		maxRetries:    cfg.maxRetries,
		retryInterval: cfg.retryInterval,
		limiter:       rate.NewLimiter(limit, 1),
	}, nil
}

// CreateTag creates a release named after the tag, pointing at the requested commit
func (c *client) CreateTag(ctx context.Context, repo model.RepoRef, req model.TagRequest) error {
	release := &github.RepositoryRelease{
		TagName: github.Ptr(req.Name),
		Name:    github.Ptr(req.Name),
	}
	if req.TargetCommitish != "" {
		release.TargetCommitish = github.Ptr(req.TargetCommitish)
	}
	if req.Body != "" {
		release.Body = github.Ptr(req.Body)
	}

	// not retried: a release may have been created even when the answer was lost
	err := c.once(ctx, func(ctx context.Context) error {
		_, _, err := c.githubClient.Repositories.CreateRelease(ctx, repo.Owner, repo.Name, release)
		return err
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create release",
			goerr.V("repo", repo.String()),
			goerr.V("tag", req.Name),
			goerr.T(types.ErrTagTransport),
		)
	}
	return nil
}
