package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdImport(env *environment) *cli.Command {
	var channelID string

	return &cli.Command{
		Name:      "import",
		Aliases:   []string{"i"},
		Usage:     "Import messages from a Slack export day file or a slackdump channel dump",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "channel",
				Usage:       "Channel ID for export files that do not carry one",
				Sources:     cli.EnvVars("TASKLENS_CHANNEL"),
				Destination: &channelID,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() == 0 {
				return goerr.New("at least one file is required")
			}

			s, err := env.open(ctx, c)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, path := range c.Args().Slice() {
				report, err := s.uc.Directory.ImportMessages(ctx, path, channelID)
				if err != nil {
					return goerr.Wrap(err, "failed to import messages", goerr.V("path", path))
				}
				logging.From(ctx).Info("Messages imported",
					"path", path,
					"channel", report.Channel,
					"imported", report.Imported,
					"duplicates", report.Duplicates,
					"skipped", report.Skipped,
				)
				if _, err := fmt.Fprintf(c.Root().Writer, "%s: %d imported, %d duplicates, %d skipped (channel %s)\n",
					path, report.Imported, report.Duplicates, report.Skipped, report.Channel); err != nil {
					return goerr.Wrap(err, "failed to write report")
				}
			}
			return nil
		},
	}
}
