package model

// ClarificationReason categorizes why a question could not be answered
type ClarificationReason string

const (
	// ClarificationValidationRejected means the question or its plan was not permitted
	ClarificationValidationRejected ClarificationReason = "validation_rejected"
	// ClarificationInvalidInput means the question failed length or character checks
	ClarificationInvalidInput ClarificationReason = "invalid_input"
	// ClarificationNotUnderstood means neither the translator nor the heuristics produced a plan
	ClarificationNotUnderstood ClarificationReason = "not_understood"
)

// Clarification is returned instead of an answer. Nothing was executed.
type Clarification struct {
	Reason ClarificationReason `json:"reason"`
	Detail string              `json:"detail"`
}

// Answer is the grouped result of a question
type Answer struct {
	Groups           []*SimilarityGroup `json:"groups"`
	RowCount         int                `json:"row_count"`
	DegradedModeUsed bool               `json:"degraded_mode_used"`
	Plan             *QueryPlan         `json:"plan,omitempty"`
}

// AskResult holds exactly one of Answer or Clarification
type AskResult struct {
	Answer        *Answer        `json:"answer,omitempty"`
	Clarification *Clarification `json:"clarification,omitempty"`
}

// NeedsClarification reports whether the result is a clarification request
func (r *AskResult) NeedsClarification() bool {
	return r != nil && r.Clarification != nil
}
