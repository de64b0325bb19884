package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// DefaultConfidence is used when an extracted record carries no confidence
const DefaultConfidence = 0.5

// MentionedDateLayout is the date format requested from the extraction service
const MentionedDateLayout = "2006-01-02"

// Candidate is one record of extraction output before it becomes an ActionItem.
// Task is required; every other field has an explicit default.
type Candidate struct {
	Task          string   `json:"task"`
	Assignee      string   `json:"assignee"`
	Assigner      string   `json:"assigner"`
	MentionedDate string   `json:"mentioned_date"`
	Status        string   `json:"status"`
	Urgency       string   `json:"urgency"`
	ContextQuote  string   `json:"context_quote"`
	Confidence    *float64 `json:"confidence"`
}

// Validate checks the required shape
func (c *Candidate) Validate() error {
	if strings.TrimSpace(c.Task) == "" {
		return goerr.Wrap(ErrParse, "task is required")
	}
	return nil
}

// ToActionItem applies defaults and produces an unsaved ActionItem attributed to msgID
func (c *Candidate) ToActionItem(msgID MessageID, runID string, extractedAt time.Time) *ActionItem {
	item := &ActionItem{
		MessageID:    msgID,
		RunID:        runID,
		Task:         strings.TrimSpace(c.Task),
		Assignee:     strings.TrimSpace(c.Assignee),
		Assigner:     strings.TrimSpace(c.Assigner),
		Status:       types.ActionStatusOpen,
		Urgency:      types.UrgencyNormal,
		ContextQuote: strings.TrimSpace(c.ContextQuote),
		Confidence:   DefaultConfidence,
		ExtractedAt:  extractedAt,
	}

	if c.Status != "" {
		if s, err := types.ParseActionStatus(c.Status); err == nil {
			item.Status = s
		} else {
			item.Status = types.ActionStatusUnknown
		}
	}
	if u, err := types.ParseUrgency(c.Urgency); err == nil {
		item.Urgency = u
	}
	if c.Confidence != nil {
		item.Confidence = ClampConfidence(*c.Confidence)
	}
	if d, err := time.Parse(MentionedDateLayout, strings.TrimSpace(c.MentionedDate)); err == nil {
		item.MentionedDate = d
	}

	return item
}
