package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

func cmdRun() *cli.Command {
	var cfg pipelineConfig

	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Compare the two most recent parent tags once and tag changed submodules",
		ArgsUsage: "[trigger tag]",
		Flags:     cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			report, err := cfg.output.Reporter()
			if err != nil {
				return err
			}

			uc, cleanup, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			input := model.RunInput{TriggerTag: c.Args().First()}
			result, err := uc.Run(ctx, input)
			if err != nil {
				return goerr.Wrap(err, "propagation run failed")
			}

			if err := report.Report(os.Stdout, result); err != nil {
				return err
			}

			summary := result.Summary()
			logger.Info("Run finished",
				"run_id", result.RunID,
				"changed", summary.Changed,
				"created", summary.Created,
				"planned", summary.Planned,
				"failed", summary.Failed,
			)

			if result.Failed() {
				return goerr.New("some submodules were not tagged",
					goerr.V("run_id", result.RunID),
					goerr.V("failed", summary.Failed),
				)
			}
			return nil
		},
	}
}
