package errutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/utils/errutil"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
)

func loggedContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logging.With(context.Background(), logger), &buf
}

func TestHandle(t *testing.T) {
	ctx, buf := loggedContext()

	gt.NoError(t, errutil.Handle(ctx, nil, "nothing"))
	gt.Value(t, buf.Len()).Equal(0)

	err := goerr.New("disk full", goerr.V("path", "/tmp/x"))
	gt.Value(t, errutil.Handle(ctx, err, "save failed")).Equal(error(err))
	gt.String(t, buf.String()).Contains(`"msg":"save failed"`)
	gt.String(t, buf.String()).Contains(`"path":"/tmp/x"`)
}

func TestHandleHTTP(t *testing.T) {
	t.Run("client error logged at warn", func(t *testing.T) {
		ctx, buf := loggedContext()
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, errors.New("bad limit"), http.StatusBadRequest)

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")
		gt.String(t, w.Body.String()).Contains(`"error":"bad limit"`)
		gt.String(t, buf.String()).Contains(`"level":"WARN"`)
	})

	t.Run("server error logged at error", func(t *testing.T) {
		ctx, buf := loggedContext()
		w := httptest.NewRecorder()
		errutil.HandleHTTP(ctx, w, errors.New("db down"), http.StatusServiceUnavailable)

		gt.Value(t, w.Code).Equal(http.StatusServiceUnavailable)
		gt.String(t, buf.String()).Contains(`"level":"ERROR"`)
	})
}
