package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// Defaults for an extraction run
const (
	DefaultBatchSize    = 120
	DefaultOverlap      = 30
	DefaultContextDepth = 3
)

// BatchConfig controls how an extraction run walks the message archive
type BatchConfig struct {
	Size          int
	Overlap       int
	Direction     types.Direction
	Concurrency   int
	ContextDepth  int
	ChannelID     string // empty means every channel
	AssignerFocus string // limits extraction to requests made by this person
}

// DefaultBatchConfig returns the configuration used when nothing is specified
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Size:         DefaultBatchSize,
		Overlap:      DefaultOverlap,
		Direction:    types.DirectionNewestFirst,
		Concurrency:  1,
		ContextDepth: DefaultContextDepth,
	}
}

// Validate rejects configurations that cannot produce a forward moving window
func (c BatchConfig) Validate() error {
	if c.Size <= 0 {
		return goerr.Wrap(ErrConfiguration, "batch size must be positive", goerr.V(BatchSizeKey, c.Size))
	}
	if c.Overlap < 0 {
		return goerr.Wrap(ErrConfiguration, "overlap must not be negative", goerr.V(OverlapKey, c.Overlap))
	}
	if c.Overlap >= c.Size {
		return goerr.Wrap(ErrConfiguration, "overlap must be smaller than batch size",
			goerr.V(BatchSizeKey, c.Size), goerr.V(OverlapKey, c.Overlap))
	}
	if !c.Direction.IsValid() {
		return goerr.Wrap(ErrConfiguration, "invalid direction", goerr.V("direction", c.Direction))
	}
	if c.Concurrency < 1 {
		return goerr.Wrap(ErrConfiguration, "concurrency must be at least 1", goerr.V("concurrency", c.Concurrency))
	}
	if c.ContextDepth < 0 {
		return goerr.Wrap(ErrConfiguration, "context depth must not be negative", goerr.V("context_depth", c.ContextDepth))
	}
	return nil
}

// Stride is the number of messages between the starts of adjacent batches
func (c BatchConfig) Stride() int {
	return c.Size - c.Overlap
}

// Batch is an ordered window of messages submitted together. Messages are in
// planning order: newest first for DirectionNewestFirst.
type Batch struct {
	Index    int
	Messages []*Message
}

// Chronological returns the batch messages sorted by posting time, oldest first
func (b *Batch) Chronological() []*Message {
	out := make([]*Message, len(b.Messages))
	copy(out, b.Messages)
	SortMessages(out)
	return out
}

// Range identifies the batch in reports
func (b *Batch) Range() BatchRange {
	r := BatchRange{Index: b.Index}
	msgs := b.Chronological()
	if len(msgs) == 0 {
		return r
	}
	first, last := msgs[0], msgs[len(msgs)-1]
	r.FirstMessageID = first.ID
	r.LastMessageID = last.ID
	r.From = first.PostedAt
	r.To = last.PostedAt
	return r
}

// BatchRange identifies a batch by position and message span
type BatchRange struct {
	Index          int       `json:"index"`
	FirstMessageID MessageID `json:"first_message_id"`
	LastMessageID  MessageID `json:"last_message_id"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
}
