package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
)

// Handle logs err with its goerr values and stack and returns it unchanged
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}
	log(ctx, slog.LevelError, msg, err)
	return err
}

// HandleHTTP logs err and writes it as a JSON error body with statusCode.
// Client errors are logged at warn level, server errors at error level.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	level := slog.LevelError
	if statusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	log(ctx, level, "HTTP error", err, "status", statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func log(ctx context.Context, level slog.Level, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err.Error())

	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values(), "stack", ge.Stacks())
	}
	logging.From(ctx).Log(ctx, level, msg, attrs...)
}
