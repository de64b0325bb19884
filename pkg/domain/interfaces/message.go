package interfaces

import (
	"context"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// MessageRepository defines the interface for imported chat messages
type MessageRepository interface {
	// SaveMany inserts messages, ignoring any whose (channel, timestamp) already exists.
	// Returns the number of newly inserted messages.
	SaveMany(ctx context.Context, msgs []*model.Message) (int, error)

	// Get retrieves a message by ID
	Get(ctx context.Context, id model.MessageID) (*model.Message, error)

	// List retrieves messages in chronological order. An empty channelID means all channels.
	List(ctx context.Context, channelID string) ([]*model.Message, error)

	// ListThreadAncestors returns up to limit messages of the thread rooted at threadTS in
	// channelID that were posted strictly before `before`, oldest first. The root is included.
	ListThreadAncestors(ctx context.Context, channelID, threadTS string, before *model.Message, limit int) ([]*model.Message, error)

	// UpdateDisplayNames sets display names, keyed by user ID, on messages that have none.
	// Returns the number of updated messages.
	UpdateDisplayNames(ctx context.Context, names map[string]string) (int, error)

	Count(ctx context.Context) (int, error)
}
