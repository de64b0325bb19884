package model

import (
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// ActionItemID is the store-assigned identifier of an action item
type ActionItemID int64

// ActionItem is a task, request or commitment inferred from conversation.
// Items are created only by extraction and may be near-duplicates of each other.
type ActionItem struct {
	ID            ActionItemID       `json:"id"`
	MessageID     MessageID          `json:"message_id"` // source message, required
	RunID         string             `json:"run_id"`
	Task          string             `json:"task"`
	Assignee      string             `json:"assignee"`
	Assigner      string             `json:"assigner"`
	MentionedDate time.Time          `json:"mentioned_date"` // zero when the conversation gives no date
	Status        types.ActionStatus `json:"status"`
	Urgency       types.Urgency      `json:"urgency"`
	ContextQuote  string             `json:"context_quote"`
	Confidence    float64            `json:"confidence"`
	ExtractedAt   time.Time          `json:"extracted_at"`

	// Populated from the source message when read back from a store
	ChannelID      string    `json:"channel_id"`
	SourcePostedAt time.Time `json:"source_posted_at"`
}

// EffectiveDate is the mentioned date, or the source message date when no date was mentioned
func (a *ActionItem) EffectiveDate() time.Time {
	if !a.MentionedDate.IsZero() {
		return a.MentionedDate
	}
	if !a.SourcePostedAt.IsZero() {
		return a.SourcePostedAt
	}
	return a.ExtractedAt
}

// ClampConfidence limits v to [0, 1]
func ClampConfidence(v float64) float64 {
	switch {
	case v != v: // NaN
		return DefaultConfidence
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
