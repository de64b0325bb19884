package usecase

import (
	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// AssembleAnswer groups executor rows into the presentation result. It has no side
// effects and is deterministic for the same rows and threshold.
func AssembleAnswer(rows []*model.ActionItem, grouper *Grouper, plan *model.QueryPlan, degraded bool) *model.Answer {
	groups := grouper.Group(rows)
	if groups == nil {
		groups = []*model.SimilarityGroup{}
	}
	return &model.Answer{
		Groups:           groups,
		RowCount:         len(rows),
		DegradedModeUsed: degraded,
		Plan:             plan,
	}
}
