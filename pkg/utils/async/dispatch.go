package async

import (
	"context"

	"github.com/secmon-lab/tasklens/pkg/utils/errutil"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
)

// Dispatch runs task in a new goroutine detached from ctx cancellation. The logger
// carried by ctx is kept. Errors and panics are logged with the task name; done is
// closed when the task returns.
func Dispatch(ctx context.Context, name string, task func(ctx context.Context) error) (done <-chan struct{}) {
	bgCtx := logging.With(context.Background(), logging.From(ctx).With("task", name))
	ch := make(chan struct{})

	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in background task", "panic", r)
			}
		}()

		if err := task(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "background task failed")
		}
	}()

	return ch
}
