package usecase

import (
	"context"

	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
)

// ThreadResolver finds the earlier messages of a reply's thread
type ThreadResolver struct {
	messages interfaces.MessageRepository
	depth    int
}

func NewThreadResolver(messages interfaces.MessageRepository, depth int) *ThreadResolver {
	return &ThreadResolver{messages: messages, depth: depth}
}

// Ancestors returns up to depth messages of msg's thread posted strictly before msg,
// oldest first. It returns nil for non-replies and never fails: a store error is
// logged and treated as a thread without known parents.
func (r *ThreadResolver) Ancestors(ctx context.Context, msg *model.Message) []*model.Message {
	if msg == nil || !msg.IsReply() || r.depth <= 0 {
		return nil
	}

	found, err := r.messages.ListThreadAncestors(ctx, msg.ChannelID, msg.ThreadTS, msg, r.depth)
	if err != nil {
		logging.From(ctx).Warn("failed to resolve thread ancestors",
			"message_id", msg.ID,
			"thread_ts", msg.ThreadTS,
			"error", err,
		)
		return nil
	}

	out := make([]*model.Message, 0, len(found))
	for _, a := range found {
		if a.ID == msg.ID || a.ChannelID != msg.ChannelID {
			continue
		}
		if a.TS != msg.ThreadTS && a.ThreadTS != msg.ThreadTS {
			continue
		}
		if !a.PostedAt.Before(msg.PostedAt) {
			continue
		}
		out = append(out, a)
	}
	model.SortMessages(out)
	if len(out) > r.depth {
		out = out[:r.depth]
	}
	return out
}

// ResolveBatch returns the ancestors of every reply in msgs keyed by message ID
func (r *ThreadResolver) ResolveBatch(ctx context.Context, msgs []*model.Message) map[model.MessageID][]*model.Message {
	out := make(map[model.MessageID][]*model.Message)
	for _, m := range msgs {
		if ancestors := r.Ancestors(ctx, m); len(ancestors) > 0 {
			out[m.ID] = ancestors
		}
	}
	return out
}
