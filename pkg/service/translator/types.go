package translator

import (
	"context"
	"errors"
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// ErrNotUnderstood is returned when no plan could be derived from a question
var ErrNotUnderstood = errors.New("question not understood")

// Service converts a natural-language question into an unvalidated QueryPlan.
// The returned plan must still pass QueryPlan.Validate before execution.
type Service interface {
	Translate(ctx context.Context, input Input) (*model.QueryPlan, error)
}

// Input is a question with the context needed to resolve relative phrases
type Input struct {
	Question string
	// Now anchors "recent" and "last N days"
	Now time.Time
	// KnownPeople are directory names and configured aliases
	KnownPeople []string
}
