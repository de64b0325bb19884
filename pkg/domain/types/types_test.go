package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

func TestQueryField_IsValid(t *testing.T) {
	for _, f := range types.AllQueryFields() {
		gt.Bool(t, f.IsValid()).True()
	}
	gt.Bool(t, types.QueryField("message_text").IsValid()).False()
	gt.Bool(t, types.QueryField("").IsValid()).False()
}

func TestQueryOperator_AllowedFor(t *testing.T) {
	tests := []struct {
		name  string
		op    types.QueryOperator
		field types.QueryField
		want  bool
	}{
		{name: "date range lower bound", op: types.QueryOpGte, field: types.QueryFieldDate, want: true},
		{name: "status equality", op: types.QueryOpEq, field: types.QueryFieldStatus, want: true},
		{name: "status contains", op: types.QueryOpContains, field: types.QueryFieldStatus, want: false},
		{name: "text contains", op: types.QueryOpContains, field: types.QueryFieldText, want: true},
		{name: "text gte", op: types.QueryOpGte, field: types.QueryFieldText, want: false},
		{name: "person eq", op: types.QueryOpEq, field: types.QueryFieldPerson, want: true},
		{name: "unknown field", op: types.QueryOpEq, field: types.QueryField("id"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.op.AllowedFor(tt.field)).Equal(tt.want)
		})
	}
}

func TestParseDirection(t *testing.T) {
	d, err := types.ParseDirection("oldest-first")
	gt.NoError(t, err).Required()
	gt.Value(t, d).Equal(types.DirectionOldestFirst)

	_, err = types.ParseDirection("sideways")
	gt.Value(t, err).NotNil()
}

func TestUrgency_Rank(t *testing.T) {
	gt.Value(t, types.UrgencyLow.Rank()).Equal(0)
	gt.Value(t, types.UrgencyNormal.Rank()).Equal(1)
	gt.Value(t, types.UrgencyHigh.Rank()).Equal(2)
	gt.Value(t, types.Urgency("whatever").Rank()).Equal(1)
}
