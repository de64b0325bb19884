package repository_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/repository/memory"
	"github.com/secmon-lab/tasklens/pkg/repository/sqlite"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tasklens.db")
	repo, err := sqlite.New(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to create sqlite repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close sqlite repository: %v", err)
		}
	})
	return repo
}

func runAllBackends(t *testing.T, run func(t *testing.T, newRepo func(t *testing.T) interfaces.Repository)) {
	t.Run("memory", func(t *testing.T) { run(t, newMemoryRepository) })
	t.Run("sqlite", func(t *testing.T) { run(t, newSQLiteRepository) })
}

var baseTime = time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)

func newMessage(channel string, offset time.Duration, user, text, threadTS string) *model.Message {
	posted := baseTime.Add(offset)
	return &model.Message{
		ChannelID: channel,
		TS:        slackTS(posted),
		UserID:    user,
		Text:      text,
		ThreadTS:  threadTS,
		PostedAt:  posted,
	}
}

func slackTS(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + ".000000"
}
