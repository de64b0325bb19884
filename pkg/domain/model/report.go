package model

import "time"

// ExtractionReport summarizes an extraction run. A run always yields a report,
// even when some batches fail or the run is cancelled.
type ExtractionReport struct {
	RunID               string         `json:"run_id"`
	ItemsAdded          int            `json:"items_added"`
	ItemsDropped        int            `json:"items_dropped"`
	UnparsableResponses int            `json:"unparsable_responses"`
	BatchesPlanned      int            `json:"batches_planned"`
	BatchesProcessed    int            `json:"batches_processed"`
	BatchFailures       []BatchFailure `json:"batch_failures"`
	Cancelled           bool           `json:"cancelled"`
	StartedAt           time.Time      `json:"started_at"`
	FinishedAt          time.Time      `json:"finished_at"`
}

// BatchFailure records why one batch produced no items
type BatchFailure struct {
	Range  BatchRange `json:"range"`
	Reason string     `json:"reason"`
	Err    error      `json:"-"`
}

// BatchOutcome is what one batch contributed to a run
type BatchOutcome struct {
	Items      []*ActionItem
	Dropped    int
	Unparsable bool
}
