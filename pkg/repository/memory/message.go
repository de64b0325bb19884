package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

type messageRepository struct {
	store *store
}

var _ interfaces.MessageRepository = &messageRepository{}

func copyMessage(m *model.Message) *model.Message {
	copied := *m
	return &copied
}

func (r *messageRepository) SaveMany(ctx context.Context, msgs []*model.Message) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	inserted := 0
	for _, msg := range msgs {
		key := messageKey{channelID: msg.ChannelID, ts: msg.TS}
		if _, exists := r.store.messageKeys[key]; exists {
			continue
		}

		r.store.nextMessage++
		saved := copyMessage(msg)
		saved.ID = r.store.nextMessage
		if !saved.IsReply() {
			saved.ThreadTS = ""
		}
		r.store.messages[saved.ID] = saved
		r.store.messageKeys[key] = saved.ID
		msg.ID = saved.ID
		inserted++
	}

	return inserted, nil
}

func (r *messageRepository) Get(ctx context.Context, id model.MessageID) (*model.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	msg, ok := r.store.messages[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "message not found", goerr.V(model.MessageIDKey, id))
	}
	return copyMessage(msg), nil
}

func (r *messageRepository) List(ctx context.Context, channelID string) ([]*model.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	msgs := make([]*model.Message, 0, len(r.store.messages))
	for _, msg := range r.store.messages {
		if channelID != "" && msg.ChannelID != channelID {
			continue
		}
		msgs = append(msgs, copyMessage(msg))
	}
	model.SortMessages(msgs)
	return msgs, nil
}

func (r *messageRepository) ListThreadAncestors(ctx context.Context, channelID, threadTS string, before *model.Message, limit int) ([]*model.Message, error) {
	if threadTS == "" || limit <= 0 || before == nil {
		return nil, nil
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var msgs []*model.Message
	for _, msg := range r.store.messages {
		if msg.ChannelID != channelID || msg.ID == before.ID {
			continue
		}
		if msg.TS != threadTS && msg.ThreadTS != threadTS {
			continue
		}
		if !msg.PostedAt.Before(before.PostedAt) {
			continue
		}
		msgs = append(msgs, copyMessage(msg))
	}

	model.SortMessages(msgs)
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (r *messageRepository) UpdateDisplayNames(ctx context.Context, names map[string]string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	updated := 0
	for _, msg := range r.store.messages {
		if msg.DisplayName != "" {
			continue
		}
		if name := names[msg.UserID]; name != "" {
			msg.DisplayName = name
			updated++
		}
	}
	return updated, nil
}

func (r *messageRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.messages), nil
}
