package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

type participantRepository struct {
	mu           sync.RWMutex
	participants map[string]*model.Participant
	metadata     *model.ParticipantMetadata
}

var _ interfaces.ParticipantRepository = &participantRepository{}

func newParticipantRepository() *participantRepository {
	return &participantRepository{
		participants: make(map[string]*model.Participant),
		metadata:     &model.ParticipantMetadata{},
	}
}

func (r *participantRepository) GetAll(ctx context.Context) ([]*model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*model.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		copied := *p
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// GetByIDs retrieves multiple participants. Missing IDs are not an error.
func (r *participantRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*model.Participant, len(ids))
	for _, id := range ids {
		if p, ok := r.participants[id]; ok {
			copied := *p
			result[id] = &copied
		}
	}
	return result, nil
}

func (r *participantRepository) SaveMany(ctx context.Context, participants []*model.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range participants {
		copied := *p
		r.participants[p.ID] = &copied
	}
	return nil
}

func (r *participantRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = make(map[string]*model.Participant)
	return nil
}

func (r *participantRepository) GetMetadata(ctx context.Context) (*model.ParticipantMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := *r.metadata
	return &copied, nil
}

func (r *participantRepository) SaveMetadata(ctx context.Context, metadata *model.ParticipantMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *metadata
	r.metadata = &copied
	return nil
}
