package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/cli/config"
	"github.com/secmon-lab/tasklens/pkg/service/worker"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdUsers(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage the participant directory",
		Commands: []*cli.Command{
			cmdUsersImport(env),
			cmdUsersSync(env),
			cmdUsersStatus(env),
		},
	}
}

func cmdUsersImport(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the directory with a users list (TXT table or JSON array)",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return goerr.New("exactly one users file is required")
			}

			s, err := env.open(ctx, c)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.uc.Directory.ImportParticipants(ctx, c.Args().First())
			if err != nil {
				return goerr.Wrap(err, "failed to import participants")
			}
			if _, err := fmt.Fprintf(c.Root().Writer, "%d participants imported\n", n); err != nil {
				return goerr.Wrap(err, "failed to write report")
			}
			return nil
		},
	}
}

func cmdUsersSync(env *environment) *cli.Command {
	var slackCfg config.Slack

	return &cli.Command{
		Name:  "sync",
		Usage: "Replace the directory with the Slack workspace member list",
		Flags: slackCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}
			if slackSvc == nil {
				return goerr.Wrap(config.ErrInvalidConfig, "slack-bot-token is required for users sync")
			}

			s, err := env.open(ctx, c)
			if err != nil {
				return err
			}
			defer s.Close()

			refresher := worker.NewParticipantRefreshWorker(s.repo, slackSvc, 0,
				worker.WithOnRefresh(s.uc.Participants().Invalidate))
			n, err := refresher.Refresh(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to sync participants")
			}
			logging.From(ctx).Info("Participants synced from Slack", "count", n)
			if _, err := fmt.Fprintf(c.Root().Writer, "%d participants synced\n", n); err != nil {
				return goerr.Wrap(err, "failed to write report")
			}
			return nil
		},
	}
}

func cmdUsersStatus(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show when the directory was last refreshed",
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := env.open(ctx, c)
			if err != nil {
				return err
			}
			defer s.Close()

			meta, err := s.uc.Directory.Status(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to get directory status")
			}
			return writeJSON(c.Root().Writer, meta)
		},
	}
}
