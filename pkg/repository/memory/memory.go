package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory keeps messages and action items in process memory. Messages and items
// share one lock so item inserts can check their source message atomically.
type Memory struct {
	store       *store
	message     *messageRepository
	actionItem  *actionItemRepository
	participant *participantRepository
}

var _ interfaces.Repository = &Memory{}

type store struct {
	mu          sync.RWMutex
	messages    map[model.MessageID]*model.Message
	messageKeys map[messageKey]model.MessageID
	items       []*model.ActionItem
	nextMessage model.MessageID
	nextItem    model.ActionItemID
}

type messageKey struct {
	channelID string
	ts        string
}

func New() *Memory {
	s := &store{
		messages:    make(map[model.MessageID]*model.Message),
		messageKeys: make(map[messageKey]model.MessageID),
	}

	return &Memory{
		store:       s,
		message:     &messageRepository{store: s},
		actionItem:  &actionItemRepository{store: s},
		participant: newParticipantRepository(),
	}
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.message
}

func (m *Memory) ActionItem() interfaces.ActionItemRepository {
	return m.actionItem
}

func (m *Memory) Participant() interfaces.ParticipantRepository {
	return m.participant
}

// OpenReadOnly returns a view that only takes read locks
func (m *Memory) OpenReadOnly(ctx context.Context) (interfaces.ReadOnlyStore, error) {
	return &readOnlyView{store: m.store}, nil
}

func (m *Memory) Close() error {
	return nil
}
