package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/service/participant"
	"github.com/secmon-lab/tasklens/pkg/service/slackexport"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
)

// DirectoryUseCase imports archives and keeps display names in step with the participant directory
type DirectoryUseCase struct {
	repo         interfaces.Repository
	participants *participant.Cache
	now          func() time.Time
}

func NewDirectoryUseCase(repo interfaces.Repository, participants *participant.Cache) *DirectoryUseCase {
	return &DirectoryUseCase{
		repo:         repo,
		participants: participants,
		now:          time.Now,
	}
}

// ImportReport summarizes one archive import
type ImportReport struct {
	Channel    string `json:"channel"`
	Imported   int    `json:"imported"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
}

// ImportMessages loads a channel export. Messages already stored for the same channel
// and timestamp are ignored, so re-importing a file is harmless.
func (uc *DirectoryUseCase) ImportMessages(ctx context.Context, path, channelID string) (*ImportReport, error) {
	ch, err := slackexport.ReadFile(ctx, path, channelID)
	if err != nil {
		return nil, err
	}

	directory, err := uc.participants.Get(ctx)
	if err != nil {
		logging.From(ctx).Warn("participant directory unavailable, importing without names", "error", err)
	}
	for _, msg := range ch.Messages {
		if msg.DisplayName != "" {
			continue
		}
		if name, ok := directory.Resolve(msg.UserID); ok {
			msg.DisplayName = name
		}
	}

	imported, err := uc.repo.Message().SaveMany(ctx, ch.Messages)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save messages",
			goerr.V("path", path), goerr.V("channel", ch.ID))
	}

	report := &ImportReport{
		Channel:    ch.ID,
		Imported:   imported,
		Duplicates: len(ch.Messages) - imported,
		Skipped:    ch.Skipped,
	}
	logging.From(ctx).Info("messages imported",
		"path", path,
		"channel", report.Channel,
		"imported", report.Imported,
		"duplicates", report.Duplicates,
		"skipped", report.Skipped,
	)
	return report, nil
}

// ImportParticipants replaces the participant directory with the contents of a users file
func (uc *DirectoryUseCase) ImportParticipants(ctx context.Context, path string) (int, error) {
	users, err := participant.LoadFile(ctx, path)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, goerr.New("users file contains no participants", goerr.V("path", path))
	}

	if err := uc.ReplaceParticipants(ctx, users, path); err != nil {
		return 0, err
	}

	logging.From(ctx).Info("participants imported", "path", path, "count", len(users))
	return len(users), nil
}

// ReplaceParticipants stores users with the replace strategy and records source in the metadata
func (uc *DirectoryUseCase) ReplaceParticipants(ctx context.Context, users []*model.Participant, source string) error {
	repo := uc.repo.Participant()
	now := uc.now()

	if err := repo.DeleteAll(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete existing participants")
	}
	if err := repo.SaveMany(ctx, users); err != nil {
		return goerr.Wrap(err, "failed to save participants", goerr.V("count", len(users)))
	}
	uc.participants.Invalidate()

	metadata := &model.ParticipantMetadata{
		LastRefreshSuccess: now,
		LastRefreshAttempt: now,
		Count:              len(users),
		Source:             source,
	}
	if err := repo.SaveMetadata(ctx, metadata); err != nil {
		return goerr.Wrap(err, "failed to save participant metadata")
	}
	return nil
}

// BackfillDisplayNames fills display names of stored messages that have none
func (uc *DirectoryUseCase) BackfillDisplayNames(ctx context.Context) (int, error) {
	directory, err := uc.participants.Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to load participant directory")
	}
	if directory.Len() == 0 {
		return 0, nil
	}

	updated, err := uc.repo.Message().UpdateDisplayNames(ctx, directory.DisplayNames())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to update display names")
	}

	logging.From(ctx).Info("display names backfilled", "updated", updated)
	return updated, nil
}

// Status returns the participant directory metadata
func (uc *DirectoryUseCase) Status(ctx context.Context) (*model.ParticipantMetadata, error) {
	metadata, err := uc.repo.Participant().GetMetadata(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get participant metadata")
	}
	return metadata, nil
}
