package config

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/domain/model"
	"github.com/m-mizutani/subtag/pkg/domain/types"
	"github.com/m-mizutani/subtag/pkg/strategy"
	"github.com/m-mizutani/subtag/pkg/usecase"
)

// Propagation holds the parameters of a propagation run
type Propagation struct {
	Owner              string
	ParentRepo         string
	SubmoduleOwner     string
	TagFilter          string
	SubmoduleTagFilter string
	SubmoduleTagDepth  int
	TagStrategy        string
	TagRules           string
	DiffMode           string
	DryRun             bool
	Concurrency        int
}

// Flags returns CLI flags for propagation configuration
func (c *Propagation) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner of the parent repository",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("SUBTAG_OWNER"),
		},
		&cli.StringFlag{
			Name:        "parent-repo",
			Usage:       "Parent repository holding the submodules, as name or owner/name",
			Required:    true,
			Destination: &c.ParentRepo,
			Sources:     cli.EnvVars("SUBTAG_PARENT_REPO"),
		},
		&cli.StringFlag{
			Name:        "submodule-owner",
			Usage:       "Owner of the submodule repositories (default: owner of the parent)",
			Destination: &c.SubmoduleOwner,
			Sources:     cli.EnvVars("SUBTAG_SUBMODULE_OWNER"),
		},
		&cli.StringFlag{
			Name:        "tag-filter",
			Usage:       "Only parent tags containing this string are compared",
			Destination: &c.TagFilter,
			Sources:     cli.EnvVars("SUBTAG_TAG_FILTER"),
		},
		&cli.StringFlag{
			Name:        "submodule-tag-filter",
			Usage:       "Only submodule tags containing this string feed the tag strategy (default: --tag-filter)",
			Destination: &c.SubmoduleTagFilter,
			Sources:     cli.EnvVars("SUBTAG_SUBMODULE_TAG_FILTER"),
		},
		&cli.IntFlag{
			Name:        "submodule-tag-depth",
			Usage:       "Number of recent submodule tags fetched for the tag strategy",
			Value:       usecase.DefaultSubmoduleTagDepth,
			Destination: &c.SubmoduleTagDepth,
			Sources:     cli.EnvVars("SUBTAG_SUBMODULE_TAG_DEPTH"),
		},
		&cli.StringFlag{
			Name:        "tag-strategy",
			Usage:       "Tag strategy (" + strings.Join(strategy.Names(), ", ") + ")",
			Destination: &c.TagStrategy,
			Sources:     cli.EnvVars("SUBTAG_TAG_STRATEGY"),
		},
		&cli.StringFlag{
			Name:        "tag-rules",
			Usage:       "TOML or YAML file choosing a tag strategy per submodule",
			Destination: &c.TagRules,
			Sources:     cli.EnvVars("SUBTAG_TAG_RULES"),
		},
		&cli.StringFlag{
			Name:        "diff-mode",
			Usage:       "How snapshots with different submodule sets are compared (strict, intersect)",
			Value:       string(usecase.DiffModeStrict),
			Destination: &c.DiffMode,
			Sources:     cli.EnvVars("SUBTAG_DIFF_MODE"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Derive tags without creating them",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("SUBTAG_DRY_RUN"),
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Number of submodules processed at once",
			Value:       usecase.DefaultConcurrency,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("SUBTAG_CONCURRENCY"),
		},
	}
}

// Parent returns the parent repository reference
func (c *Propagation) Parent() (model.RepoRef, error) {
	owner, name := c.Owner, c.ParentRepo
	if o, n, ok := strings.Cut(c.ParentRepo, "/"); ok {
		if owner != "" && !strings.EqualFold(owner, o) {
			return model.RepoRef{}, goerr.New("owner conflicts with parent repository",
				goerr.V("owner", owner),
				goerr.V("parent_repo", c.ParentRepo),
				goerr.T(types.ErrTagInvalidConfig),
			)
		}
		owner, name = o, n
	}

	if owner == "" || name == "" {
		return model.RepoRef{}, goerr.New("parent repository needs owner and name",
			goerr.V("owner", owner),
			goerr.V("parent_repo", c.ParentRepo),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	return model.RepoRef{Owner: owner, Name: name}, nil
}

// Strategy returns the tag strategy. A rule file takes precedence over --tag-strategy.
func (c *Propagation) Strategy() (interfaces.TagStrategy, error) {
	if c.TagRules != "" {
		rules, err := strategy.LoadRuleFile(c.TagRules)
		if err != nil {
			return nil, err
		}
		return rules, nil
	}
	if c.TagStrategy == "" {
		return nil, goerr.New("either --tag-strategy or --tag-rules is required", goerr.T(types.ErrTagInvalidConfig))
	}
	return strategy.New(c.TagStrategy)
}

// NewPipeline wires differ, reconciler and propagator over gateway
func (c *Propagation) NewPipeline(gateway interfaces.Gateway, opts ...usecase.PipelineOption) (interfaces.PropagationUseCase, error) {
	parent, err := c.Parent()
	if err != nil {
		return nil, err
	}

	mode, err := usecase.ParseDiffMode(c.DiffMode)
	if err != nil {
		return nil, err
	}

	tagStrategy, err := c.Strategy()
	if err != nil {
		return nil, err
	}

	submoduleOwner := c.SubmoduleOwner
	if submoduleOwner == "" {
		submoduleOwner = parent.Owner
	}

	submoduleTagFilter := c.SubmoduleTagFilter
	if submoduleTagFilter == "" {
		submoduleTagFilter = c.TagFilter
	}

	propagator := usecase.NewPropagator(gateway, tagStrategy, submoduleOwner,
		usecase.WithSubmoduleTagFilter(submoduleTagFilter),
		usecase.WithSubmoduleTagDepth(c.SubmoduleTagDepth),
		usecase.WithConcurrency(c.Concurrency),
		usecase.WithDryRun(c.DryRun),
	)

	return usecase.NewPipeline(usecase.PipelineConfig{
		Parent:         parent,
		SubmoduleOwner: submoduleOwner,
		TagFilter:      c.TagFilter,
		DiffMode:       mode,
	}, gateway, propagator, opts...), nil
}
