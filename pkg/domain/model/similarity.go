package model

import (
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// DefaultSimilarityThreshold is the minimum token Jaccard similarity for two items to group
const DefaultSimilarityThreshold = 0.8

// SimilarityGroup is a display-time cluster of action items describing the same task.
// Groups are derived per query and never stored.
type SimilarityGroup struct {
	Canonical *ActionItem        `json:"canonical"`
	MemberIDs []ActionItemID     `json:"member_ids"`
	Count     int                `json:"count"`
	Earliest  time.Time          `json:"earliest"`
	Latest    time.Time          `json:"latest"`
	Status    types.ActionStatus `json:"status"`
	Assignees []string           `json:"assignees"`
	Members   []*ActionItem      `json:"-"`
}
