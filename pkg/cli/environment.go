package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/cli/config"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/usecase"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// environment holds the flags shared by every command: the config file, the store and the time zone
type environment struct {
	configPath string
	repoCfg    config.Repository
	tzCfg      config.Timezone
}

func (x *environment) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML configuration file",
			Sources:     cli.EnvVars("TASKLENS_CONFIG"),
			Destination: &x.configPath,
		},
	}
	flags = append(flags, x.repoCfg.Flags()...)
	flags = append(flags, x.tzCfg.Flags()...)
	return flags
}

// appConfig loads the TOML file, or returns nil when --config is not given
func (x *environment) appConfig() (*config.AppConfig, error) {
	if x.configPath == "" {
		return nil, nil
	}
	return config.LoadAppConfiguration(x.configPath)
}

// session is what a command needs to run use cases against the configured store
type session struct {
	repo interfaces.Repository
	file *config.AppConfig
	loc  *time.Location
	uc   *usecase.UseCases
}

func (s *session) Close() {
	if err := s.repo.Close(); err != nil {
		logging.Default().Error("failed to close repository", "error", err.Error())
	}
}

// open loads configuration, opens the repository and builds use cases. The caller
// must Close the returned session.
func (x *environment) open(ctx context.Context, c *cli.Command, opts ...usecase.Option) (*session, error) {
	file, err := x.appConfig()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	loc, err := x.tzCfg.Location(file, c.IsSet)
	if err != nil {
		return nil, err
	}

	repo, err := x.repoCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}

	base := []usecase.Option{
		usecase.WithLocation(loc),
		usecase.WithPeople(file.ToPeople()),
	}
	return &session{
		repo: repo,
		file: file,
		loc:  loc,
		uc:   usecase.New(repo, append(base, opts...)...),
	}, nil
}
