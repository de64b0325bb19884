package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/utils/async"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLoggedContext() (context.Context, *syncBuffer) {
	out := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(out, nil))
	return logging.With(context.Background(), logger), out
}

func TestDispatch(t *testing.T) {
	t.Run("runs detached from caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var taskErr error
		<-async.Dispatch(ctx, "probe", func(ctx context.Context) error {
			taskErr = ctx.Err()
			return nil
		})
		gt.NoError(t, taskErr)
	})

	t.Run("logs errors with the task name", func(t *testing.T) {
		ctx, out := newLoggedContext()
		<-async.Dispatch(ctx, "backfill", func(ctx context.Context) error {
			return errors.New("boom")
		})
		gt.String(t, out.String()).Contains(`"task":"backfill"`)
		gt.String(t, out.String()).Contains("background task failed")
	})

	t.Run("recovers panics", func(t *testing.T) {
		ctx, out := newLoggedContext()
		<-async.Dispatch(ctx, "explode", func(ctx context.Context) error {
			panic("kaboom")
		})
		gt.String(t, out.String()).Contains("panic in background task")
	})
}
