package interfaces

import (
	"context"
)

// Repository defines the interface for data persistence
type Repository interface {
	Message() MessageRepository
	ActionItem() ActionItemRepository
	Participant() ParticipantRepository

	// OpenReadOnly opens a read-only view of the store for the duration of one query.
	// The caller must Close it. Failure to open wraps model.ErrStoreUnavailable.
	OpenReadOnly(ctx context.Context) (ReadOnlyStore, error)

	Close() error
}
