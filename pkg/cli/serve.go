package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/cli/config"
	httpctrl "github.com/secmon-lab/tasklens/pkg/controller/http"
	"github.com/secmon-lab/tasklens/pkg/service/worker"
	"github.com/secmon-lab/tasklens/pkg/utils/async"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(env *environment) *cli.Command {
	var addr string
	var refreshInterval time.Duration
	var llmCfg config.LLM
	var queryCfg config.Query
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("TASKLENS_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "participant-refresh-interval",
			Usage:       "Interval between Slack directory refreshes (requires --slack-bot-token)",
			Category:    "Slack",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("TASKLENS_PARTICIPANT_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, queryCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the local HTTP query API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			opts, err := queryOptions(ctx, c, env, &llmCfg, &queryCfg)
			if err != nil {
				return err
			}
			s, err := env.open(ctx, c, opts...)
			if err != nil {
				return err
			}
			defer s.Close()

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}

			// After each refresh the cache is dropped and missing display names are filled in
			onRefresh := func() {
				s.uc.Participants().Invalidate()
				async.Dispatch(ctx, "backfill_display_names", func(ctx context.Context) error {
					n, err := s.uc.Directory.BackfillDisplayNames(ctx)
					if err != nil {
						return err
					}
					logging.From(ctx).Info("Display names backfilled", "updated", n)
					return nil
				})
			}

			var refresher *worker.ParticipantRefreshWorker
			if slackSvc != nil {
				refresher = worker.NewParticipantRefreshWorker(s.repo, slackSvc, refreshInterval,
					worker.WithOnRefresh(onRefresh))
				if err := refresher.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start participant refresh worker")
				}
			} else {
				logging.Default().Info("Slack Bot Token not configured, participant directory is not refreshed")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(s.uc.Query),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "query", queryCfg)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if refresher != nil {
					refresher.Stop()
				}
				return err
			case <-ctx.Done():
				logging.Default().Info("Context cancelled, shutting down")
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			}

			// Stop the refresh worker first
			if refresher != nil {
				refresher.Stop()
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
