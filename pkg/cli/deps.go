package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/subtag/pkg/cli/config"
	"github.com/m-mizutani/subtag/pkg/domain/interfaces"
	"github.com/m-mizutani/subtag/pkg/usecase"
)

// pipelineConfig gathers every setting a propagation pipeline needs
type pipelineConfig struct {
	github      config.GitHub
	propagation config.Propagation
	output      config.Output
	notify      config.Notify
	sentry      config.Sentry
}

func (c *pipelineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, c.github.Flags()...)
	flags = append(flags, c.propagation.Flags()...)
	flags = append(flags, c.output.Flags()...)
	flags = append(flags, c.notify.Flags()...)
	flags = append(flags, c.sentry.Flags()...)
	return flags
}

// build wires the pipeline. The returned cleanup must be called when the command ends.
func (c *pipelineConfig) build(ctx context.Context) (interfaces.PropagationUseCase, func(), error) {
	logger := ctxlog.From(ctx)

	flush, err := c.sentry.Configure()
	if err != nil {
		return nil, nil, err
	}
	cleanups := []func(){flush}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	gateway, err := c.github.NewGateway()
	if err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to create GitHub gateway")
	}

	var opts []usecase.PipelineOption

	store, err := c.output.ArtifactStore(ctx)
	if err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to open artifact store")
	}
	if store != nil {
		cleanups = append(cleanups, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close artifact store", "error", err)
			}
		})
		opts = append(opts, usecase.WithPipelineArtifactStore(store))
	}

	notifier, err := c.notify.Notifier()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	uc, err := c.propagation.NewPipeline(gateway, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Debug("Pipeline configured",
		"github", c.github,
		"propagation", c.propagation,
		"output", c.output,
	)
	return uc, cleanup, nil
}
