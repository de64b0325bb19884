package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/cli/config"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/service/extraction"
	"github.com/secmon-lab/tasklens/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdAnalyze(env *environment) *cli.Command {
	var llmCfg config.LLM
	var extractionCfg config.Extraction
	var asJSON bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the run report as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, extractionCfg.Flags()...)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Extract action items from imported messages with the LLM",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			file, err := env.appConfig()
			if err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}
			batchCfg, err := extractionCfg.BatchConfig(file, c.IsSet)
			if err != nil {
				return err
			}

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM")
			}
			if llmClient == nil {
				return goerr.Wrap(model.ErrConfiguration, "analyze requires an LLM provider",
					goerr.V("hint", "set --gemini-project, --anthropic-api-key or --openai-api-key"))
			}
			extractor, err := extraction.New(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to create extraction service")
			}

			s, err := env.open(ctx, c, usecase.WithExtractor(extractor))
			if err != nil {
				return err
			}
			defer s.Close()

			// The first interrupt stops the run after in-flight batches; the report is still printed
			runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := s.uc.Extraction.RunExtraction(runCtx, batchCfg)
			if err != nil {
				return goerr.Wrap(err, "extraction failed")
			}

			if asJSON {
				return writeJSON(c.Root().Writer, report)
			}
			return renderReport(c.Root().Writer, report)
		},
	}
}

func renderReport(w io.Writer, r *model.ExtractionReport) error {
	status := color.GreenString("completed")
	if r.Cancelled {
		status = color.YellowString("cancelled")
	} else if len(r.BatchFailures) > 0 {
		status = color.YellowString("completed with failures")
	}

	if _, err := fmt.Fprintf(w, "run %s %s in %s\n", r.RunID, status, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)); err != nil {
		return goerr.Wrap(err, "failed to write report")
	}
	if _, err := fmt.Fprintf(w, "  batches: %d/%d processed\n  items: %d added, %d dropped\n  unparsable responses: %d\n",
		r.BatchesProcessed, r.BatchesPlanned, r.ItemsAdded, r.ItemsDropped, r.UnparsableResponses); err != nil {
		return goerr.Wrap(err, "failed to write report")
	}
	for _, f := range r.BatchFailures {
		if _, err := fmt.Fprintf(w, "  %s batch %d (%d..%d): %s\n", color.RedString("failed"),
			f.Range.Index, f.Range.FirstMessageID, f.Range.LastMessageID, f.Reason); err != nil {
			return goerr.Wrap(err, "failed to write report")
		}
	}
	return nil
}
