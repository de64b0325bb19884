package interfaces

import (
	"context"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// ParticipantRepository provides storage for the participant directory.
// Refreshes use a replace strategy: DeleteAll then SaveMany.
type ParticipantRepository interface {
	GetAll(ctx context.Context) ([]*model.Participant, error)

	// GetByIDs returns a map of ID to participant. Missing IDs are not included.
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Participant, error)

	// SaveMany upserts participants
	SaveMany(ctx context.Context, participants []*model.Participant) error

	DeleteAll(ctx context.Context) error

	GetMetadata(ctx context.Context) (*model.ParticipantMetadata, error)
	SaveMetadata(ctx context.Context, metadata *model.ParticipantMetadata) error
}
