package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

type actionItemRepository struct {
	store *store
}

var _ interfaces.ActionItemRepository = &actionItemRepository{}

func copyActionItem(a *model.ActionItem) *model.ActionItem {
	copied := *a
	return &copied
}

// withSource returns a copy carrying the source message fields
func (s *store) withSource(a *model.ActionItem) *model.ActionItem {
	copied := copyActionItem(a)
	if msg, ok := s.messages[a.MessageID]; ok {
		copied.ChannelID = msg.ChannelID
		copied.SourcePostedAt = msg.PostedAt
	}
	return copied
}

func (r *actionItemRepository) CreateMany(ctx context.Context, items []*model.ActionItem) ([]*model.ActionItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, item := range items {
		if _, ok := r.store.messages[item.MessageID]; !ok {
			return nil, goerr.Wrap(model.ErrNotFound, "source message not found", goerr.V(model.MessageIDKey, item.MessageID))
		}
	}

	created := make([]*model.ActionItem, 0, len(items))
	for _, item := range items {
		r.store.nextItem++
		saved := copyActionItem(item)
		saved.ID = r.store.nextItem
		saved.Confidence = model.ClampConfidence(item.Confidence)
		r.store.items = append(r.store.items, saved)
		created = append(created, r.store.withSource(saved))
	}
	return created, nil
}

func (r *actionItemRepository) List(ctx context.Context) ([]*model.ActionItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	items := make([]*model.ActionItem, 0, len(r.store.items))
	for _, item := range r.store.items {
		items = append(items, r.store.withSource(item))
	}
	return items, nil
}

func (r *actionItemRepository) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.items), nil
}
