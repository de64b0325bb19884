package worker

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/service/slack"
	"github.com/secmon-lab/tasklens/pkg/utils/errutil"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
)

// ParticipantSourceSlack is recorded in metadata for refreshes from the Slack API
const ParticipantSourceSlack = "slack"

// ParticipantRefreshWorker keeps the participant directory in sync with the Slack workspace.
//
// Single process only; there is no locking across instances.
type ParticipantRefreshWorker struct {
	repo         interfaces.Repository
	slackService slack.Service
	interval     time.Duration
	onRefresh    func()
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// Option configures ParticipantRefreshWorker
type Option func(*ParticipantRefreshWorker)

// WithOnRefresh registers a callback invoked after every successful refresh,
// typically to invalidate a participant cache
func WithOnRefresh(fn func()) Option {
	return func(w *ParticipantRefreshWorker) { w.onRefresh = fn }
}

// NewParticipantRefreshWorker creates a new worker for refreshing participants
func NewParticipantRefreshWorker(repo interfaces.Repository, slackSvc slack.Service, interval time.Duration, opts ...Option) *ParticipantRefreshWorker {
	w := &ParticipantRefreshWorker{
		repo:         repo,
		slackService: slackSvc,
		interval:     interval,
		onRefresh:    func() {},
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background refresh loop. The initial sync also runs in the
// background so that server startup is not blocked.
func (w *ParticipantRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("Participant refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ParticipantRefreshWorker) Stop() {
	logging.Default().Info("Participant refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Participant refresh worker stopped")
}

func (w *ParticipantRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	if _, err := w.Refresh(ctx); err != nil {
		_ = errutil.Handle(ctx, err, "Initial participant refresh failed (will retry next interval)")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Refresh(ctx); err != nil {
				_ = errutil.Handle(ctx, err, "Participant refresh failed (will retry next interval)")
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("Participant refresh worker context cancelled")
			return
		}
	}
}

// Refresh performs a single refresh cycle with the replace strategy (DeleteAll then
// SaveMany) and returns the number of participants stored. Existing rows are kept when
// the Slack API call fails.
func (w *ParticipantRefreshWorker) Refresh(ctx context.Context) (int, error) {
	startTime := time.Now()
	participants := w.repo.Participant()

	existing, err := participants.GetMetadata(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get existing metadata")
	}

	attempt := *existing
	attempt.LastRefreshAttempt = startTime
	if err := participants.SaveMetadata(ctx, &attempt); err != nil {
		return 0, goerr.Wrap(err, "failed to save refresh attempt metadata")
	}

	slackUsers, err := w.slackService.ListUsers(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list Slack users from API")
	}

	users := make([]*model.Participant, len(slackUsers))
	for i, su := range slackUsers {
		users[i] = &model.Participant{
			ID:          su.ID,
			Name:        su.Name,
			RealName:    su.RealName,
			DisplayName: su.DisplayName,
			UpdatedAt:   startTime,
		}
	}

	if err := participants.DeleteAll(ctx); err != nil {
		return 0, goerr.Wrap(err, "failed to delete existing participants")
	}
	if err := participants.SaveMany(ctx, users); err != nil {
		return 0, goerr.Wrap(err, "failed to save participants", goerr.V("count", len(users)))
	}

	success := &model.ParticipantMetadata{
		LastRefreshSuccess: startTime,
		LastRefreshAttempt: startTime,
		Count:              len(users),
		Source:             ParticipantSourceSlack,
	}
	if err := participants.SaveMetadata(ctx, success); err != nil {
		return 0, goerr.Wrap(err, "failed to save refresh success metadata")
	}

	w.onRefresh()

	logging.Default().Info("Participant refresh completed",
		"count", len(users),
		"duration", time.Since(startTime).String())

	return len(users), nil
}
