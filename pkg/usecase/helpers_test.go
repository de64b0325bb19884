package usecase_test

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/service/extraction"
	"github.com/secmon-lab/tasklens/pkg/service/translator"
)

var baseTime = time.Date(2025, 10, 6, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time {
	return time.Date(2025, 10, 8, 12, 0, 0, 0, time.UTC)
}

// newMsg builds an unsaved message posted offset after baseTime
func newMsg(channel string, offset time.Duration, user, text, threadTS string) *model.Message {
	posted := baseTime.Add(offset)
	return &model.Message{
		ChannelID: channel,
		TS:        slackTS(posted),
		UserID:    user,
		Text:      text,
		ThreadTS:  threadTS,
		PostedAt:  posted,
	}
}

func slackTS(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10) + "." + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}

// sequence builds n saved-looking messages one minute apart with IDs 1..n
func sequence(n int) []*model.Message {
	msgs := make([]*model.Message, n)
	for i := range msgs {
		m := newMsg("C1", time.Duration(i)*time.Minute, "U1", fmt.Sprintf("message %d", i+1), "")
		m.ID = model.MessageID(i + 1)
		msgs[i] = m
	}
	return msgs
}

type mockExtractor struct {
	calls     atomic.Int32
	extractFn func(ctx context.Context, input extraction.Input) (*extraction.Result, error)
}

func (m *mockExtractor) Extract(ctx context.Context, input extraction.Input) (*extraction.Result, error) {
	m.calls.Add(1)
	if m.extractFn != nil {
		return m.extractFn(ctx, input)
	}
	return &extraction.Result{}, nil
}

type mockTranslator struct {
	calls       atomic.Int32
	translateFn func(ctx context.Context, input translator.Input) (*model.QueryPlan, error)
}

func (m *mockTranslator) Translate(ctx context.Context, input translator.Input) (*model.QueryPlan, error) {
	m.calls.Add(1)
	if m.translateFn != nil {
		return m.translateFn(ctx, input)
	}
	return nil, translator.ErrNotUnderstood
}

// spyRepository counts read-only opens and write calls made through it
type spyRepository struct {
	interfaces.Repository
	readOnlyOpens atomic.Int32
	writes        atomic.Int32
	openFn        func(ctx context.Context) (interfaces.ReadOnlyStore, error)
}

func (s *spyRepository) OpenReadOnly(ctx context.Context) (interfaces.ReadOnlyStore, error) {
	s.readOnlyOpens.Add(1)
	if s.openFn != nil {
		return s.openFn(ctx)
	}
	return s.Repository.OpenReadOnly(ctx)
}

func (s *spyRepository) Message() interfaces.MessageRepository {
	return &spyMessages{MessageRepository: s.Repository.Message(), writes: &s.writes}
}

func (s *spyRepository) ActionItem() interfaces.ActionItemRepository {
	return &spyActionItems{ActionItemRepository: s.Repository.ActionItem(), writes: &s.writes}
}

type spyMessages struct {
	interfaces.MessageRepository
	writes *atomic.Int32
}

func (s *spyMessages) SaveMany(ctx context.Context, msgs []*model.Message) (int, error) {
	s.writes.Add(1)
	return s.MessageRepository.SaveMany(ctx, msgs)
}

func (s *spyMessages) UpdateDisplayNames(ctx context.Context, names map[string]string) (int, error) {
	s.writes.Add(1)
	return s.MessageRepository.UpdateDisplayNames(ctx, names)
}

type spyActionItems struct {
	interfaces.ActionItemRepository
	writes *atomic.Int32
}

func (s *spyActionItems) CreateMany(ctx context.Context, items []*model.ActionItem) ([]*model.ActionItem, error) {
	s.writes.Add(1)
	return s.ActionItemRepository.CreateMany(ctx, items)
}

type slowStore struct{}

func (slowStore) QueryActionItems(ctx context.Context, plan *model.ValidatedPlan) ([]*model.ActionItem, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowStore) Close() error { return nil }

func ptr[T any](v T) *T { return &v }
