package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

func TestCandidate_ToActionItem(t *testing.T) {
	now := time.Date(2025, 10, 8, 0, 0, 0, 0, time.UTC)

	t.Run("applies defaults for missing fields", func(t *testing.T) {
		var c model.Candidate
		gt.NoError(t, json.Unmarshal([]byte(`{"task":"provide screenshots","assignee":"A","assigner":"B"}`), &c)).Required()
		gt.NoError(t, c.Validate()).Required()

		item := c.ToActionItem(7, "run-1", now)
		gt.Value(t, item.MessageID).Equal(model.MessageID(7))
		gt.Value(t, item.Confidence).Equal(model.DefaultConfidence)
		gt.Value(t, item.Status).Equal(types.ActionStatusOpen)
		gt.Value(t, item.Urgency).Equal(types.UrgencyNormal)
		gt.Bool(t, item.MentionedDate.IsZero()).True()
		gt.Value(t, item.ExtractedAt).Equal(now)
	})

	t.Run("clamps confidence", func(t *testing.T) {
		high, low := 3.5, -1.0
		gt.Value(t, (&model.Candidate{Task: "x", Confidence: &high}).ToActionItem(1, "", now).Confidence).Equal(1.0)
		gt.Value(t, (&model.Candidate{Task: "x", Confidence: &low}).ToActionItem(1, "", now).Confidence).Equal(0.0)
	})

	t.Run("maps unrecognized status to unknown", func(t *testing.T) {
		item := (&model.Candidate{Task: "x", Status: "in review"}).ToActionItem(1, "", now)
		gt.Value(t, item.Status).Equal(types.ActionStatusUnknown)
	})

	t.Run("parses mentioned date", func(t *testing.T) {
		item := (&model.Candidate{Task: "x", MentionedDate: "2025-10-06"}).ToActionItem(1, "", now)
		gt.Value(t, item.MentionedDate).Equal(time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC))
	})

	t.Run("requires a task", func(t *testing.T) {
		gt.Error(t, (&model.Candidate{Task: "  "}).Validate()).Is(model.ErrParse)
	})
}

func TestParseSlackTS(t *testing.T) {
	ts, err := model.ParseSlackTS("1696600000.000100")
	gt.NoError(t, err).Required()
	gt.Value(t, ts.Unix()).Equal(int64(1696600000))
	gt.Value(t, ts.Nanosecond()).Equal(100000)

	_, err = model.ParseSlackTS("not-a-ts")
	gt.Value(t, err).NotNil()
}

func TestMessage_IsReply(t *testing.T) {
	gt.Bool(t, (&model.Message{TS: "2.0", ThreadTS: "1.0"}).IsReply()).True()
	gt.Bool(t, (&model.Message{TS: "1.0", ThreadTS: "1.0"}).IsReply()).False()
	gt.Bool(t, (&model.Message{TS: "1.0"}).IsReply()).False()
}

func TestMessage_AuthorName(t *testing.T) {
	gt.Value(t, (&model.Message{UserID: "U1"}).AuthorName()).Equal("U1")
	gt.Value(t, (&model.Message{UserID: "U1", DisplayName: "Dan"}).AuthorName()).Equal("Dan")
}
