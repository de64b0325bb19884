package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/secmon-lab/tasklens/pkg/repository/memory"
	"github.com/secmon-lab/tasklens/pkg/service/slack"
	"github.com/secmon-lab/tasklens/pkg/service/worker"
)

// mockSlackService is a mock implementation of slack.Service for testing
type mockSlackService struct {
	mu              sync.RWMutex
	users           []*slack.User
	listUsersError  error
	listUsersCalled int
}

func newMockSlackService() *mockSlackService {
	return &mockSlackService{
		users: []*slack.User{},
	}
}

func (m *mockSlackService) setUsers(users []*slack.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = users
}

func (m *mockSlackService) setListUsersError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listUsersError = err
}

func (m *mockSlackService) ListUsers(ctx context.Context) ([]*slack.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listUsersCalled++

	if m.listUsersError != nil {
		return nil, m.listUsersError
	}

	// Return a deep copy to prevent race conditions
	result := make([]*slack.User, len(m.users))
	for i, u := range m.users {
		userCopy := *u
		result[i] = &userCopy
	}

	return result, nil
}

func TestParticipantRefreshWorker_ImmediateInitialSync(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	mockSvc := newMockSlackService()
	mockSvc.setUsers([]*slack.User{
		{ID: "U001", Name: "alice", RealName: "Alice Smith"},
		{ID: "U002", Name: "bob", RealName: "Bob Johnson", DisplayName: "Bob"},
	})

	var refreshed atomic.Int32
	w := worker.NewParticipantRefreshWorker(repo, mockSvc, 10*time.Minute,
		worker.WithOnRefresh(func() { refreshed.Add(1) }))

	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	// Wait for background initial sync to complete
	time.Sleep(50 * time.Millisecond)

	users, err := repo.Participant().GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to get all participants: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 participants in database, got %d", len(users))
	}

	metadata, err := repo.Participant().GetMetadata(ctx)
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}
	if metadata.Count != 2 {
		t.Errorf("expected Count=2, got %d", metadata.Count)
	}
	if metadata.Source != worker.ParticipantSourceSlack {
		t.Errorf("expected Source=slack, got %q", metadata.Source)
	}
	if metadata.LastRefreshSuccess.IsZero() {
		t.Error("expected LastRefreshSuccess to be set")
	}
	if refreshed.Load() != 1 {
		t.Errorf("expected one refresh callback, got %d", refreshed.Load())
	}
}

func TestParticipantRefreshWorker_PeriodicRefresh(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	mockSvc := newMockSlackService()
	mockSvc.setUsers([]*slack.User{{ID: "U001", Name: "alice"}})

	w := worker.NewParticipantRefreshWorker(repo, mockSvc, 100*time.Millisecond)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)

	mockSvc.setUsers([]*slack.User{
		{ID: "U001", Name: "alice"},
		{ID: "U002", Name: "bob"},
	})

	// Wait for periodic refresh (at least one interval + buffer)
	time.Sleep(200 * time.Millisecond)

	users, err := repo.Participant().GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to get all participants after refresh: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 participants after periodic refresh, got %d", len(users))
	}
}

func TestParticipantRefreshWorker_KeepsDataOnAPIError(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	mockSvc := newMockSlackService()
	mockSvc.setUsers([]*slack.User{{ID: "U001", Name: "alice"}})

	w := worker.NewParticipantRefreshWorker(repo, mockSvc, time.Hour)
	if _, err := w.Refresh(ctx); err != nil {
		t.Fatalf("initial refresh failed: %v", err)
	}

	mockSvc.setListUsersError(errors.New("slack api unavailable"))
	if _, err := w.Refresh(ctx); err == nil {
		t.Fatal("expected refresh error")
	}

	users, err := repo.Participant().GetAll(ctx)
	if err != nil {
		t.Fatalf("failed to get all participants: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected old participants to be preserved, got %d", len(users))
	}

	metadata, err := repo.Participant().GetMetadata(ctx)
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}
	if !metadata.LastRefreshAttempt.After(metadata.LastRefreshSuccess) {
		t.Error("expected LastRefreshAttempt to be newer than LastRefreshSuccess")
	}
}

func TestParticipantRefreshWorker_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := worker.NewParticipantRefreshWorker(memory.New(), newMockSlackService(), 10*time.Millisecond)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	cancel()
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
