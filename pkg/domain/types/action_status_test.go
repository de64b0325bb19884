package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

func TestActionStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status types.ActionStatus
		want   bool
	}{
		{name: "valid open", status: types.ActionStatusOpen, want: true},
		{name: "valid completed", status: types.ActionStatusCompleted, want: true},
		{name: "valid unknown", status: types.ActionStatusUnknown, want: true},
		{name: "invalid status", status: types.ActionStatus("pending"), want: false},
		{name: "empty status", status: types.ActionStatus(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.status.IsValid()).Equal(tt.want)
		})
	}
}

func TestParseActionStatus(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		s, err := types.ParseActionStatus(" Completed ")
		gt.NoError(t, err).Required()
		gt.Value(t, s).Equal(types.ActionStatusCompleted)
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		_, err := types.ParseActionStatus("in-progress")
		gt.Value(t, err).NotNil()
	})

	t.Run("all statuses round trip", func(t *testing.T) {
		for _, s := range types.AllActionStatuses() {
			got, err := types.ParseActionStatus(s.String())
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(s)
		}
	})
}

func TestParseUrgency(t *testing.T) {
	u, err := types.ParseUrgency("HIGH")
	gt.NoError(t, err).Required()
	gt.Value(t, u).Equal(types.UrgencyHigh)

	_, err = types.ParseUrgency("critical")
	gt.Value(t, err).NotNil()
}
