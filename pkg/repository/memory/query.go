package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

type readOnlyView struct {
	store *store
}

var _ interfaces.ReadOnlyStore = &readOnlyView{}

func (v *readOnlyView) QueryActionItems(ctx context.Context, plan *model.ValidatedPlan) ([]*model.ActionItem, error) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()

	preds := plan.Predicates()
	var matched []*model.ActionItem
	for _, item := range v.store.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := v.store.withSource(item)
		if matchesAll(plan, candidate, preds) {
			matched = append(matched, candidate)
		}
	}

	order := plan.Sort()
	sort.SliceStable(matched, func(i, j int) bool {
		c := compareBy(plan, order.Field, matched[i], matched[j])
		if c == 0 {
			c = compareInt(int64(matched[i].ID), int64(matched[j].ID))
		}
		if order.Descending {
			return c > 0
		}
		return c < 0
	})

	if len(matched) > plan.Limit() {
		matched = matched[:plan.Limit()]
	}
	return matched, nil
}

func (v *readOnlyView) Close() error {
	return nil
}

func matchesAll(plan *model.ValidatedPlan, item *model.ActionItem, preds []model.ValidatedPredicate) bool {
	for _, p := range preds {
		if !matches(plan, item, p) {
			return false
		}
	}
	return true
}

func matches(plan *model.ValidatedPlan, item *model.ActionItem, p model.ValidatedPredicate) bool {
	switch p.Field {
	case types.QueryFieldPerson:
		return matchValue(item.Assigner, p) || matchValue(item.Assignee, p)
	case types.QueryFieldAssigner:
		return matchValue(item.Assigner, p)
	case types.QueryFieldAssignee:
		return matchValue(item.Assignee, p)
	case types.QueryFieldStatus:
		return anyEqual(item.Status.String(), p.Values)
	case types.QueryFieldUrgency:
		return anyEqual(item.Urgency.String(), p.Values)
	case types.QueryFieldText:
		task, quote := strings.ToLower(item.Task), strings.ToLower(item.ContextQuote)
		for _, v := range p.Values {
			v = strings.ToLower(v)
			if strings.Contains(task, v) || strings.Contains(quote, v) {
				return true
			}
		}
		return false
	case types.QueryFieldDate:
		date := effectiveDate(plan, item)
		want := p.Date.Format(model.QueryDateLayout)
		switch p.Op {
		case types.QueryOpGte:
			return date >= want
		case types.QueryOpLte:
			return date <= want
		default:
			return date == want
		}
	}
	return false
}

func matchValue(actual string, p model.ValidatedPredicate) bool {
	actual = strings.ToLower(actual)
	for _, v := range p.Values {
		v = strings.ToLower(v)
		if p.Op == types.QueryOpContains {
			if strings.Contains(actual, v) {
				return true
			}
		} else if actual == v {
			return true
		}
	}
	return false
}

func anyEqual(actual string, values []string) bool {
	for _, v := range values {
		if actual == v {
			return true
		}
	}
	return false
}

// effectiveDate is the mentioned date, else the source message date in the plan location
func effectiveDate(plan *model.ValidatedPlan, item *model.ActionItem) string {
	if !item.MentionedDate.IsZero() {
		return item.MentionedDate.Format(model.QueryDateLayout)
	}
	return plan.SourceDate(item.SourcePostedAt)
}

func compareBy(plan *model.ValidatedPlan, field types.SortField, a, b *model.ActionItem) int {
	switch field {
	case types.SortFieldExtracted:
		return compareInt(a.ExtractedAt.UnixNano(), b.ExtractedAt.UnixNano())
	case types.SortFieldConfidence:
		switch {
		case a.Confidence < b.Confidence:
			return -1
		case a.Confidence > b.Confidence:
			return 1
		}
		return 0
	case types.SortFieldUrgency:
		return compareInt(int64(a.Urgency.Rank()), int64(b.Urgency.Rank()))
	default:
		return strings.Compare(effectiveDate(plan, a), effectiveDate(plan, b))
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
