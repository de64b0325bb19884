package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/cli/config"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
	"github.com/secmon-lab/tasklens/pkg/service/translator"
	"github.com/secmon-lab/tasklens/pkg/usecase"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// queryOptions builds the use case options shared by ask, query-person and serve.
// Without an LLM provider questions are answered in heuristic mode.
func queryOptions(ctx context.Context, c *cli.Command, env *environment, llmCfg *config.LLM, queryCfg *config.Query) ([]usecase.Option, error) {
	file, err := env.appConfig()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}
	qc, err := queryCfg.QueryConfig(file, c.IsSet)
	if err != nil {
		return nil, err
	}
	opts := []usecase.Option{usecase.WithQueryConfig(qc)}

	if llmCfg == nil {
		return opts, nil
	}
	llmClient, err := llmCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure LLM")
	}
	if llmClient == nil {
		logging.From(ctx).Info("No LLM provider configured, questions are answered in heuristic mode")
		return opts, nil
	}
	svc, err := translator.New(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create translator")
	}
	return append(opts, usecase.WithTranslator(svc)), nil
}

func cmdAsk(env *environment) *cli.Command {
	var llmCfg config.LLM
	var queryCfg config.Query
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the answer as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, queryCfg.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a natural-language question about action items",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(question) == "" {
				return goerr.New("a question is required")
			}

			opts, err := queryOptions(ctx, c, env, &llmCfg, &queryCfg)
			if err != nil {
				return err
			}
			s, err := env.open(ctx, c, opts...)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.uc.Query.Ask(ctx, question)
			if err != nil {
				return goerr.Wrap(err, "failed to answer question")
			}
			if asJSON {
				return writeJSON(c.Root().Writer, res)
			}
			return renderResult(c.Root().Writer, res, s.loc)
		},
	}
}

func cmdQueryPerson(env *environment) *cli.Command {
	var queryCfg config.Query
	var recent bool
	var status string
	var limit int
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "recent",
			Usage:       "Only items from the last 7 days",
			Destination: &recent,
		},
		&cli.StringFlag{
			Name:        "status",
			Usage:       "Only items with this status (open, completed)",
			Destination: &status,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum rows (capped by --max-rows)",
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the answer as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, queryCfg.Flags()...)

	return &cli.Command{
		Name:      "query-person",
		Aliases:   []string{"qp"},
		Usage:     "List action items a person requested or was asked to do",
		ArgsUsage: "<name>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if name == "" {
				return goerr.New("a person name is required")
			}

			pq := usecase.PersonQuery{Name: name, Recent: recent, Limit: limit}
			if status != "" {
				s, err := types.ParseActionStatus(status)
				if err != nil {
					return goerr.Wrap(err, "invalid status", goerr.V("status", status))
				}
				pq.Status = s
			}

			opts, err := queryOptions(ctx, c, env, nil, &queryCfg)
			if err != nil {
				return err
			}
			s, err := env.open(ctx, c, opts...)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.uc.Query.QueryPerson(ctx, pq)
			if err != nil {
				return goerr.Wrap(err, "failed to query person")
			}
			if asJSON {
				return writeJSON(c.Root().Writer, res)
			}
			return renderResult(c.Root().Writer, res, s.loc)
		},
	}
}
