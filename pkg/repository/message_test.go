package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

func runMessageRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("SaveMany ignores duplicate channel and timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m1 := newMessage("C1", 0, "U1", "first", "")
		m2 := newMessage("C1", time.Minute, "U2", "second", "")
		n, err := repo.Message().SaveMany(ctx, []*model.Message{m1, m2})
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(2)
		gt.Number(t, int(m1.ID)).NotEqual(0)

		dup := newMessage("C1", 0, "U1", "first again", "")
		other := newMessage("C2", 0, "U1", "same ts, other channel", "")
		n, err = repo.Message().SaveMany(ctx, []*model.Message{dup, other})
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)

		count, err := repo.Message().Count(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(3)

		got, err := repo.Message().Get(ctx, m1.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Text).Equal("first")
		gt.Value(t, got.PostedAt.Equal(m1.PostedAt)).Equal(true)
	})

	t.Run("Get returns not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Message().Get(context.Background(), 9999)
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("List is chronological and filters by channel", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		msgs := []*model.Message{
			newMessage("C1", 3*time.Minute, "U1", "c", ""),
			newMessage("C1", time.Minute, "U1", "a", ""),
			newMessage("C2", 2*time.Minute, "U1", "b", ""),
		}
		_, err := repo.Message().SaveMany(ctx, msgs)
		gt.NoError(t, err).Required()

		all, err := repo.Message().List(ctx, "")
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3)
		gt.Value(t, all[0].Text).Equal("a")
		gt.Value(t, all[1].Text).Equal("b")
		gt.Value(t, all[2].Text).Equal("c")

		c1, err := repo.Message().List(ctx, "C1")
		gt.NoError(t, err).Required()
		gt.Array(t, c1).Length(2)
	})

	t.Run("ListThreadAncestors returns earlier thread members oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		root := newMessage("C1", 0, "UA", "I'll get you screenshots", "")
		rootTS := root.TS
		r1 := newMessage("C1", time.Minute, "UB", "thanks", rootTS)
		r2 := newMessage("C1", 2*time.Minute, "UA", "working on it", rootTS)
		r3 := newMessage("C1", 3*time.Minute, "UC", "me too", rootTS)
		target := newMessage("C1", 24*time.Hour, "UB", "Did you make progress?", rootTS)
		later := newMessage("C1", 25*time.Hour, "UA", "yes", rootTS)
		unrelated := newMessage("C1", 30*time.Second, "UA", "unrelated", "")
		otherChannel := newMessage("C2", 30*time.Second, "UA", "other", rootTS)

		_, err := repo.Message().SaveMany(ctx, []*model.Message{root, r1, r2, r3, target, later, unrelated, otherChannel})
		gt.NoError(t, err).Required()

		got, err := repo.Message().ListThreadAncestors(ctx, "C1", rootTS, target, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3)
		gt.Value(t, got[0].Text).Equal("I'll get you screenshots")
		gt.Value(t, got[1].Text).Equal("thanks")
		gt.Value(t, got[2].Text).Equal("working on it")
		for _, m := range got {
			gt.Bool(t, m.PostedAt.Before(target.PostedAt)).True()
		}

		none, err := repo.Message().ListThreadAncestors(ctx, "C1", rootTS, root, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})

	t.Run("root stored with its own thread timestamp is not a reply", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		root := newMessage("C1", 0, "UA", "root", "")
		root.ThreadTS = root.TS
		_, err := repo.Message().SaveMany(ctx, []*model.Message{root})
		gt.NoError(t, err).Required()

		got, err := repo.Message().Get(ctx, root.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.IsReply()).False()
	})

	t.Run("UpdateDisplayNames fills only missing names", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m1 := newMessage("C1", 0, "U1", "a", "")
		m2 := newMessage("C1", time.Minute, "U2", "b", "")
		m2.DisplayName = "Already Named"
		m3 := newMessage("C1", 2*time.Minute, "U3", "c", "")
		_, err := repo.Message().SaveMany(ctx, []*model.Message{m1, m2, m3})
		gt.NoError(t, err).Required()

		n, err := repo.Message().UpdateDisplayNames(ctx, map[string]string{"U1": "Dan", "U2": "Other"})
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)

		got1, err := repo.Message().Get(ctx, m1.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got1.DisplayName).Equal("Dan")

		got2, err := repo.Message().Get(ctx, m2.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got2.DisplayName).Equal("Already Named")

		got3, err := repo.Message().Get(ctx, m3.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got3.DisplayName).Equal("")
	})
}

func TestMessageRepository(t *testing.T) {
	runAllBackends(t, runMessageRepositoryTest)
}
