package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/repository/memory"
	"github.com/secmon-lab/tasklens/pkg/usecase"
)

type failingMessages struct {
	interfaces.MessageRepository
}

func (failingMessages) ListThreadAncestors(ctx context.Context, channelID, threadTS string, before *model.Message, limit int) ([]*model.Message, error) {
	return nil, errors.New("database is locked")
}

func TestThreadResolver(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	root := newMsg("C1", 0, "U1", "can someone review the deploy doc?", "")
	replies := []*model.Message{
		newMsg("C1", 1*time.Minute, "U2", "on it", root.TS),
		newMsg("C1", 2*time.Minute, "U3", "me too", root.TS),
		newMsg("C1", 3*time.Minute, "U4", "thanks", root.TS),
		newMsg("C1", 4*time.Minute, "U1", "did anyone finish?", root.TS),
	}
	other := newMsg("C1", 30*time.Second, "U9", "unrelated", "")
	otherChannel := newMsg("C2", 30*time.Second, "U9", "same ts elsewhere", root.TS)

	all := append([]*model.Message{root, other, otherChannel}, replies...)
	_, err := repo.Message().SaveMany(ctx, all)
	gt.NoError(t, err).Required()

	t.Run("returns earliest ancestors up to depth in ascending order", func(t *testing.T) {
		resolver := usecase.NewThreadResolver(repo.Message(), 3)
		target := replies[3]

		got := resolver.Ancestors(ctx, target)
		gt.Array(t, got).Length(3).Required()
		gt.Value(t, got[0].ID).Equal(root.ID)
		gt.Value(t, got[1].ID).Equal(replies[0].ID)
		gt.Value(t, got[2].ID).Equal(replies[1].ID)
		for i, a := range got {
			gt.Value(t, a.PostedAt.Before(target.PostedAt)).Equal(true)
			gt.Value(t, a.ChannelID).Equal(target.ChannelID)
			if i > 0 {
				gt.Value(t, got[i-1].PostedAt.Before(a.PostedAt)).Equal(true)
			}
		}
	})

	t.Run("depth bounds the result", func(t *testing.T) {
		resolver := usecase.NewThreadResolver(repo.Message(), 1)
		gt.Array(t, resolver.Ancestors(ctx, replies[3])).Length(1)
	})

	t.Run("non-replies and roots have no ancestors", func(t *testing.T) {
		resolver := usecase.NewThreadResolver(repo.Message(), 3)
		gt.Array(t, resolver.Ancestors(ctx, root)).Length(0)
		gt.Array(t, resolver.Ancestors(ctx, other)).Length(0)
	})

	t.Run("a reply whose root was never imported has no ancestors", func(t *testing.T) {
		orphan := newMsg("C3", time.Hour, "U1", "following up", "1.000001")
		_, err := repo.Message().SaveMany(ctx, []*model.Message{orphan})
		gt.NoError(t, err).Required()

		resolver := usecase.NewThreadResolver(repo.Message(), 3)
		gt.Array(t, resolver.Ancestors(ctx, orphan)).Length(0)
	})

	t.Run("ResolveBatch keys ancestors by reply ID", func(t *testing.T) {
		resolver := usecase.NewThreadResolver(repo.Message(), 3)
		got := resolver.ResolveBatch(ctx, []*model.Message{root, replies[0], other})
		gt.Value(t, len(got)).Equal(1)
		gt.Array(t, got[replies[0].ID]).Length(1)
	})

	t.Run("store errors are treated as no ancestors", func(t *testing.T) {
		resolver := usecase.NewThreadResolver(failingMessages{MessageRepository: repo.Message()}, 3)
		gt.Array(t, resolver.Ancestors(ctx, replies[3])).Length(0)
	})
}
