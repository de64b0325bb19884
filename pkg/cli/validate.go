package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/cli/config"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate(env *environment) *cli.Command {
	var extractionCfg config.Extraction
	var queryCfg config.Query

	var flags []cli.Flag
	flags = append(flags, extractionCfg.Flags()...)
	flags = append(flags, queryCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and the effective settings",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			file, err := env.appConfig()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			if file == nil {
				logger.Info("No configuration file specified, checking flags only")
			}

			batchCfg, err := extractionCfg.BatchConfig(file, c.IsSet)
			if err != nil {
				return goerr.Wrap(err, "invalid extraction settings")
			}
			queryConfig, err := queryCfg.QueryConfig(file, c.IsSet)
			if err != nil {
				return goerr.Wrap(err, "invalid query settings")
			}
			loc, err := env.tzCfg.Location(file, c.IsSet)
			if err != nil {
				return goerr.Wrap(err, "invalid timezone")
			}

			logger.Info("Configuration validation passed",
				"batch_size", batchCfg.Size,
				"overlap", batchCfg.Overlap,
				"direction", batchCfg.Direction,
				"max_rows", queryConfig.Limits.MaxRows,
				"rate_limit", queryConfig.RateLimitPerMinute,
				"timezone", loc.String(),
			)
			for _, p := range file.ToPeople() {
				logger.Info("Person validated", "name", p.Name, "aliases", p.Aliases)
			}
			return nil
		},
	}
}
