package safe_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/secmon-lab/tasklens/pkg/utils/safe"
)

type failingCloser struct{ calls int }

func (f *failingCloser) Close() error {
	f.calls++
	return errors.New("already closed")
}

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	t.Run("nil closers are ignored", func(t *testing.T) {
		safe.Close(ctx, nil)
		var f *os.File
		safe.Close(ctx, f)
		gt.Value(t, buf.Len()).Equal(0)
	})

	t.Run("failure is logged", func(t *testing.T) {
		c := &failingCloser{}
		safe.Close(ctx, c)
		gt.Value(t, c.calls).Equal(1)
		gt.String(t, buf.String()).Contains("Failed to close")
		gt.String(t, buf.String()).Contains("already closed")
	})
}
