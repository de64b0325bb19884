package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdBackfill(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "Fill in missing message display names from the participant directory",
		Action: func(ctx context.Context, c *cli.Command) error {
			s, err := env.open(ctx, c)
			if err != nil {
				return err
			}
			defer s.Close()

			updated, err := s.uc.Directory.BackfillDisplayNames(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to backfill display names")
			}
			if _, err := fmt.Fprintf(c.Root().Writer, "%d messages updated\n", updated); err != nil {
				return goerr.Wrap(err, "failed to write report")
			}
			return nil
		},
	}
}
