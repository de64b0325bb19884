package cli

import (
	"context"
	"io"
	"os"

	"github.com/secmon-lab/tasklens/pkg/cli/config"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	return run(ctx, args, version, os.Stdout)
}

func run(ctx context.Context, args []string, version string, w io.Writer) error {
	var loggerCfg config.Logger
	var env environment
	var closer func()

	flags := loggerCfg.Flags()
	flags = append(flags, env.Flags()...)

	app := &cli.Command{
		Name:    "tasklens",
		Usage:   "Find action items in Slack conversations and answer questions about them",
		Version: version,
		Writer:  w,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting tasklens", "logger", loggerCfg, "repository", env.repoCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdImport(&env),
			cmdUsers(&env),
			cmdBackfill(&env),
			cmdAnalyze(&env),
			cmdAsk(&env),
			cmdQueryPerson(&env),
			cmdServe(&env),
			cmdValidate(&env),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
