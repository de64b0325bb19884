package extraction

import (
	"context"
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// Service extracts action item candidates from a rendered conversation transcript
type Service interface {
	// Extract submits one transcript. Transient failures are retried; the returned
	// error wraps model.ErrTransientService or model.ErrPermanentService when the
	// batch could not be processed.
	Extract(ctx context.Context, input Input) (*Result, error)
}

// Input is one batch worth of conversation
type Input struct {
	Transcript string
	// ReferenceDate anchors relative expressions such as "tomorrow"
	ReferenceDate time.Time
	// AssignerFocus limits extraction to requests made by this person when set
	AssignerFocus string
}

// Result is the parsed output of one successful call
type Result struct {
	Candidates []*model.Candidate
	// Dropped counts records that did not match the required shape
	Dropped int
	// Unparsable is set when the response contained no record at all
	Unparsable bool
	Attempts   int
}
