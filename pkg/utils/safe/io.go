package safe

import (
	"context"
	"io"
	"reflect"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/utils/errutil"
)

// Close closes c for deferred cleanup and logs a failure instead of returning it.
// A nil closer, including a typed nil pointer, is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if v := reflect.ValueOf(c); v.Kind() == reflect.Pointer && v.IsNil() {
		return
	}
	if err := c.Close(); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "close failed", goerr.V("type", reflect.TypeOf(c).String())), "Failed to close")
	}
}
