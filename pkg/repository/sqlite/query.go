package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

type readOnlyStore struct {
	db *sql.DB
}

var _ interfaces.ReadOnlyStore = &readOnlyStore{}

func (s *readOnlyStore) QueryActionItems(ctx context.Context, plan *model.ValidatedPlan) ([]*model.ActionItem, error) {
	query, args := buildQuery(plan)
	items, err := queryActionItems(ctx, s.db, query, args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, goerr.Wrap(model.ErrQueryTimeout, "query interrupted", goerr.V("error", ctx.Err().Error()))
		}
		return nil, err
	}
	return items, nil
}

func (s *readOnlyStore) Close() error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close read-only database")
	}
	return nil
}

// effectiveDateExpr is the mentioned date, or the calendar date of the source message
// shifted by a bound '+N seconds' offset modifier. Only ordering uses it; date
// predicates compare source instants against day bounds instead.
const effectiveDateExpr = `COALESCE(ai.mentioned_date, date(m.posted_at / 1000000000, 'unixepoch', ?))`

var sortExpr = map[types.SortField]string{
	types.SortFieldExtracted:  `ai.extracted_at`,
	types.SortFieldConfidence: `ai.confidence`,
	types.SortFieldUrgency:    `CASE ai.urgency WHEN 'high' THEN 2 WHEN 'normal' THEN 1 ELSE 0 END`,
}

// buildQuery renders a validated plan into fixed SQL fragments. Every value from the
// plan is passed as a bind parameter; only allow-listed column expressions appear in text.
func buildQuery(plan *model.ValidatedPlan) (string, []any) {
	var (
		where []string
		args  []any
	)

	for _, p := range plan.Predicates() {
		clause, clauseArgs := predicateClause(plan, p)
		if clause == "" {
			continue
		}
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + actionItemColumns + actionItemFrom)
	if len(where) > 0 {
		b.WriteString(` WHERE `)
		b.WriteString(strings.Join(where, ` AND `))
	}

	order := plan.Sort()
	expr, ok := sortExpr[order.Field]
	if !ok {
		expr = effectiveDateExpr
		args = append(args, offsetModifier(plan.Location(), time.Now()))
	}
	dir := ` ASC`
	if order.Descending {
		dir = ` DESC`
	}
	b.WriteString(` ORDER BY ` + expr + dir + `, ai.id` + dir)
	b.WriteString(` LIMIT ?`)
	args = append(args, plan.Limit())

	return b.String(), args
}

// offsetModifier renders the UTC offset of loc at t as an sqlite date modifier
func offsetModifier(loc *time.Location, t time.Time) string {
	_, offset := t.In(loc).Zone()
	return fmt.Sprintf("%+d seconds", offset)
}

// dateClause matches the mentioned date as text, or the source message instant
// against the bounds of the calendar day in the plan location
func dateClause(plan *model.ValidatedPlan, p model.ValidatedPredicate) (string, []any) {
	date := p.Date.Format(model.QueryDateLayout)
	start, end := plan.DayBounds(p.Date)
	const unmentioned = `ai.mentioned_date IS NULL AND m.posted_at`
	switch p.Op {
	case types.QueryOpGte:
		return `(ai.mentioned_date >= ? OR (` + unmentioned + ` >= ?))`,
			[]any{date, start.UnixNano()}
	case types.QueryOpLte:
		return `(ai.mentioned_date <= ? OR (` + unmentioned + ` < ?))`,
			[]any{date, end.UnixNano()}
	default:
		return `(ai.mentioned_date = ? OR (` + unmentioned + ` >= ? AND m.posted_at < ?))`,
			[]any{date, start.UnixNano(), end.UnixNano()}
	}
}

func predicateClause(plan *model.ValidatedPlan, p model.ValidatedPredicate) (string, []any) {
	switch p.Field {
	case types.QueryFieldPerson:
		a, aArgs := matchClause(`ai.assigner`, p)
		b, bArgs := matchClause(`ai.assignee`, p)
		return `(` + a + ` OR ` + b + `)`, append(aArgs, bArgs...)
	case types.QueryFieldAssigner:
		return matchClause(`ai.assigner`, p)
	case types.QueryFieldAssignee:
		return matchClause(`ai.assignee`, p)
	case types.QueryFieldStatus:
		return inClause(`ai.status`, p.Values, false)
	case types.QueryFieldUrgency:
		return inClause(`ai.urgency`, p.Values, false)
	case types.QueryFieldText:
		var parts []string
		var args []any
		for _, v := range p.Values {
			pattern := likePattern(v)
			parts = append(parts, `(LOWER(ai.task) LIKE ? ESCAPE '\' OR LOWER(ai.context_quote) LIKE ? ESCAPE '\')`)
			args = append(args, pattern, pattern)
		}
		return `(` + strings.Join(parts, ` OR `) + `)`, args
	case types.QueryFieldDate:
		return dateClause(plan, p)
	}
	return "", nil
}

func matchClause(column string, p model.ValidatedPredicate) (string, []any) {
	if p.Op == types.QueryOpContains {
		var parts []string
		var args []any
		for _, v := range p.Values {
			parts = append(parts, `LOWER(`+column+`) LIKE ? ESCAPE '\'`)
			args = append(args, likePattern(v))
		}
		return `(` + strings.Join(parts, ` OR `) + `)`, args
	}
	return inClause(column, p.Values, true)
}

func inClause(column string, values []string, foldCase bool) (string, []any) {
	expr := column
	if foldCase {
		expr = `LOWER(` + column + `)`
	}
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = `?`
		if foldCase {
			v = strings.ToLower(v)
		}
		args[i] = v
	}
	return expr + ` IN (` + strings.Join(placeholders, `, `) + `)`, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(v string) string {
	return `%` + likeEscaper.Replace(strings.ToLower(v)) + `%`
}
