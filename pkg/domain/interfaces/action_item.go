package interfaces

import (
	"context"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// ActionItemRepository defines the interface for extracted action items
type ActionItemRepository interface {
	// CreateMany inserts items atomically with auto-generated IDs. Every item must
	// reference an existing message, otherwise nothing is written.
	CreateMany(ctx context.Context, items []*model.ActionItem) ([]*model.ActionItem, error)

	// List retrieves every item in creation order with source message fields populated
	List(ctx context.Context) ([]*model.ActionItem, error)

	Count(ctx context.Context) (int, error)
}

// ReadOnlyStore executes validated plans. Implementations must not be able to write.
type ReadOnlyStore interface {
	QueryActionItems(ctx context.Context, plan *model.ValidatedPlan) ([]*model.ActionItem, error)
	Close() error
}
