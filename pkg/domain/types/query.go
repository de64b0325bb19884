package types

// QueryEntity is the target of a structured query plan
type QueryEntity string

const (
	QueryEntityActionItems QueryEntity = "action_items"
)

func (e QueryEntity) String() string {
	return string(e)
}

// QueryIntent describes what a plan wants to do with the store. Only read is ever executable.
type QueryIntent string

const (
	QueryIntentRead QueryIntent = "read"
)

func (i QueryIntent) String() string {
	return string(i)
}

// QueryField is a filterable field of an action item
type QueryField string

const (
	// QueryFieldPerson matches either the assigner or the assignee
	QueryFieldPerson   QueryField = "person"
	QueryFieldAssigner QueryField = "assigner"
	QueryFieldAssignee QueryField = "assignee"
	QueryFieldStatus   QueryField = "status"
	QueryFieldUrgency  QueryField = "urgency"
	// QueryFieldDate is the mentioned date, falling back to the source message date
	QueryFieldDate QueryField = "date"
	// QueryFieldText matches task description and context quote
	QueryFieldText QueryField = "text"
)

// AllQueryFields returns the filter field allow-list
func AllQueryFields() []QueryField {
	return []QueryField{
		QueryFieldPerson,
		QueryFieldAssigner,
		QueryFieldAssignee,
		QueryFieldStatus,
		QueryFieldUrgency,
		QueryFieldDate,
		QueryFieldText,
	}
}

// IsValid reports whether the field is in the allow-list
func (f QueryField) IsValid() bool {
	for _, v := range AllQueryFields() {
		if f == v {
			return true
		}
	}
	return false
}

func (f QueryField) String() string {
	return string(f)
}

// QueryOperator is a comparison operator usable in a predicate
type QueryOperator string

const (
	// QueryOpEq is case-insensitive equality against any of the predicate values
	QueryOpEq       QueryOperator = "eq"
	QueryOpContains QueryOperator = "contains"
	QueryOpGte      QueryOperator = "gte"
	QueryOpLte      QueryOperator = "lte"
)

// IsValid reports whether the operator is known
func (o QueryOperator) IsValid() bool {
	switch o {
	case QueryOpEq, QueryOpContains, QueryOpGte, QueryOpLte:
		return true
	default:
		return false
	}
}

// AllowedFor reports whether the operator may be applied to field
func (o QueryOperator) AllowedFor(f QueryField) bool {
	switch f {
	case QueryFieldDate:
		return o == QueryOpGte || o == QueryOpLte || o == QueryOpEq
	case QueryFieldStatus, QueryFieldUrgency:
		return o == QueryOpEq
	case QueryFieldText:
		return o == QueryOpContains
	case QueryFieldPerson, QueryFieldAssigner, QueryFieldAssignee:
		return o == QueryOpEq || o == QueryOpContains
	default:
		return false
	}
}

func (o QueryOperator) String() string {
	return string(o)
}

// SortField is a column a plan may order by
type SortField string

const (
	SortFieldDate       SortField = "date"
	SortFieldExtracted  SortField = "extracted_at"
	SortFieldConfidence SortField = "confidence"
	SortFieldUrgency    SortField = "urgency"
)

// IsValid reports whether the sort field is in the allow-list
func (s SortField) IsValid() bool {
	switch s {
	case SortFieldDate, SortFieldExtracted, SortFieldConfidence, SortFieldUrgency:
		return true
	default:
		return false
	}
}

func (s SortField) String() string {
	return string(s)
}
