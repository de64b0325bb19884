package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// Row limit defaults
const (
	DefaultMaxRows     = 500
	DefaultRows        = 100
	maxPredicates      = 16
	maxPredicateValues = 16
	maxValueLength     = 200
)

// QueryDateLayout is the date format accepted in date predicates
const QueryDateLayout = "2006-01-02"

// Predicate is one (field, operator, values) condition. Multiple values mean any-of.
type Predicate struct {
	Field  types.QueryField    `json:"field"`
	Op     types.QueryOperator `json:"op"`
	Values []string            `json:"values"`
}

// SortSpec orders plan results
type SortSpec struct {
	Field      types.SortField `json:"field"`
	Descending bool            `json:"descending"`
}

// QueryPlan is a structured, unvalidated data request. It is never executable until
// Validate turns it into a ValidatedPlan, and it is never rendered as query text.
type QueryPlan struct {
	Entity     types.QueryEntity `json:"entity"`
	Intent     types.QueryIntent `json:"intent"`
	Predicates []Predicate       `json:"predicates"`
	Sort       *SortSpec         `json:"sort,omitempty"`
	Limit      int               `json:"limit"`
}

// QueryLimits bounds validated plans
type QueryLimits struct {
	MaxRows     int
	DefaultRows int
	// Location is the calendar used for items without a mentioned date; nil means UTC
	Location *time.Location
}

// DefaultQueryLimits returns the standard row bounds
func DefaultQueryLimits() QueryLimits {
	return QueryLimits{MaxRows: DefaultMaxRows, DefaultRows: DefaultRows}
}

// ValidatedPredicate is a predicate whose field, operator and values passed validation
type ValidatedPredicate struct {
	Field  types.QueryField
	Op     types.QueryOperator
	Values []string
	Date   time.Time // set for date predicates
}

// ValidatedPlan can only be built by QueryPlan.Validate
type ValidatedPlan struct {
	predicates []ValidatedPredicate
	sort       SortSpec
	limit      int
	location   *time.Location
}

// Predicates returns a copy of the validated predicates
func (p *ValidatedPlan) Predicates() []ValidatedPredicate {
	out := make([]ValidatedPredicate, len(p.predicates))
	for i, v := range p.predicates {
		v.Values = append([]string(nil), v.Values...)
		out[i] = v
	}
	return out
}

func (p *ValidatedPlan) Sort() SortSpec { return p.sort }

func (p *ValidatedPlan) Limit() int { return p.limit }

// Location is the calendar that source message timestamps are dated in
func (p *ValidatedPlan) Location() *time.Location {
	if p.location == nil {
		return time.UTC
	}
	return p.location
}

// DayBounds returns the half-open instant range [start, end) of the calendar day d
// in the plan location
func (p *ValidatedPlan) DayBounds(d time.Time) (time.Time, time.Time) {
	y, m, day := d.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, p.Location())
	return start, time.Date(y, m, day+1, 0, 0, 0, 0, p.Location())
}

// SourceDate formats the calendar date of a source message timestamp in the plan location
func (p *ValidatedPlan) SourceDate(t time.Time) string {
	return t.In(p.Location()).Format(QueryDateLayout)
}

func reject(msg string, opts ...goerr.Option) error {
	return goerr.Wrap(ErrValidationRejected, msg, opts...)
}

// Validate is the mandatory gate in front of query execution. Fields outside the
// allow-list, non-read intents, destructive content and unparsable dates are rejected.
// The row limit is capped to limits.MaxRows.
func (p *QueryPlan) Validate(limits QueryLimits) (*ValidatedPlan, error) {
	if limits.MaxRows <= 0 {
		limits.MaxRows = DefaultMaxRows
	}
	if limits.DefaultRows <= 0 || limits.DefaultRows > limits.MaxRows {
		limits.DefaultRows = min(DefaultRows, limits.MaxRows)
	}

	if p.Entity != "" && p.Entity != types.QueryEntityActionItems {
		return nil, reject("unsupported entity", goerr.V("entity", p.Entity))
	}
	if p.Intent != "" && p.Intent != types.QueryIntentRead {
		return nil, reject("only read queries are permitted", goerr.V("intent", p.Intent))
	}
	if len(p.Predicates) > maxPredicates {
		return nil, reject("too many predicates", goerr.V("count", len(p.Predicates)))
	}

	vp := &ValidatedPlan{
		sort:     SortSpec{Field: types.SortFieldDate, Descending: true},
		limit:    p.Limit,
		location: limits.Location,
	}

	for _, pred := range p.Predicates {
		v, err := validatePredicate(pred)
		if err != nil {
			return nil, err
		}
		vp.predicates = append(vp.predicates, v)
	}

	if p.Sort != nil {
		if !p.Sort.Field.IsValid() {
			return nil, reject("sort field is not allowed", goerr.V(FieldKey, p.Sort.Field))
		}
		vp.sort = *p.Sort
	}

	switch {
	case vp.limit <= 0:
		vp.limit = limits.DefaultRows
	case vp.limit > limits.MaxRows:
		vp.limit = limits.MaxRows
	}

	return vp, nil
}

func validatePredicate(pred Predicate) (ValidatedPredicate, error) {
	if !pred.Field.IsValid() {
		return ValidatedPredicate{}, reject("field is not allowed", goerr.V(FieldKey, pred.Field))
	}
	if !pred.Op.IsValid() || !pred.Op.AllowedFor(pred.Field) {
		return ValidatedPredicate{}, reject("operator is not allowed for field",
			goerr.V(FieldKey, pred.Field), goerr.V(OperatorKey, pred.Op))
	}
	if len(pred.Values) == 0 || len(pred.Values) > maxPredicateValues {
		return ValidatedPredicate{}, reject("predicate value count out of range",
			goerr.V(FieldKey, pred.Field), goerr.V("count", len(pred.Values)))
	}

	v := ValidatedPredicate{Field: pred.Field, Op: pred.Op}
	for _, raw := range pred.Values {
		value := strings.TrimSpace(raw)
		if value == "" || len(value) > maxValueLength {
			return ValidatedPredicate{}, reject("predicate value is empty or too long", goerr.V(FieldKey, pred.Field))
		}
		if kw, found := DetectDestructiveStatement(value); found {
			return ValidatedPredicate{}, reject("predicate value contains a destructive statement",
				goerr.V(FieldKey, pred.Field), goerr.V("keyword", kw))
		}

		switch pred.Field {
		case types.QueryFieldStatus:
			s, err := types.ParseActionStatus(value)
			if err != nil {
				return ValidatedPredicate{}, reject("invalid status value", goerr.V(ValueKey, value))
			}
			value = s.String()
		case types.QueryFieldUrgency:
			u, err := types.ParseUrgency(value)
			if err != nil {
				return ValidatedPredicate{}, reject("invalid urgency value", goerr.V(ValueKey, value))
			}
			value = u.String()
		case types.QueryFieldDate:
			if len(pred.Values) != 1 {
				return ValidatedPredicate{}, reject("date predicate takes exactly one value")
			}
			d, err := ParseQueryDate(value)
			if err != nil {
				return ValidatedPredicate{}, reject("unparsable date value", goerr.V(ValueKey, value))
			}
			v.Date = d
			value = d.Format(QueryDateLayout)
		}
		v.Values = append(v.Values, value)
	}

	return v, nil
}

// ParseQueryDate accepts YYYY-MM-DD or RFC 3339 and returns the UTC calendar date
func ParseQueryDate(s string) (time.Time, error) {
	if d, err := time.Parse(QueryDateLayout, s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid date", goerr.V(ValueKey, s))
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

var destructivePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"DROP", regexp.MustCompile(`(?i)\bdrop\s+(table|database|index|view|trigger|schema)\b`)},
	{"DELETE", regexp.MustCompile(`(?i)\bdelete\s+from\b`)},
	{"INSERT", regexp.MustCompile(`(?i)\binsert\s+(or\s+\w+\s+)?into\b`)},
	{"REPLACE", regexp.MustCompile(`(?i)\breplace\s+into\b`)},
	{"UPDATE", regexp.MustCompile(`(?i)\bupdate\s+\w+\s+set\b`)},
	{"ALTER", regexp.MustCompile(`(?i)\balter\s+(table|database|index|view)\b`)},
	{"TRUNCATE", regexp.MustCompile(`(?i)\btruncate\s+table\b`)},
	{"CREATE", regexp.MustCompile(`(?i)\bcreate\s+(temp\s+|temporary\s+)?(table|index|view|trigger)\b`)},
	{"ATTACH", regexp.MustCompile(`(?i)\b(attach|detach)\s+database\b`)},
	{"PRAGMA", regexp.MustCompile(`(?i)\bpragma\s+\w+`)},
	{";", regexp.MustCompile(`;`)},
	{"--", regexp.MustCompile(`--`)},
	{"/*", regexp.MustCompile(`/\*|\*/`)},
}

// DetectDestructiveStatement reports the first statement keyword or comment marker in s
// that could alter a store if it were ever interpreted as query text.
// Plain English such as "send an update" does not match.
func DetectDestructiveStatement(s string) (string, bool) {
	for _, p := range destructivePatterns {
		if p.re.MatchString(s) {
			return p.name, true
		}
	}
	return "", false
}
