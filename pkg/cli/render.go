package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

const dateLayout = "2006-01-02"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// statusColor paints a status: open yellow, completed green, anything else faint
func statusColor(s types.ActionStatus) *color.Color {
	switch s {
	case types.ActionStatusOpen:
		return color.New(color.FgYellow)
	case types.ActionStatusCompleted:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Faint)
	}
}

func dateRange(from, to time.Time, loc *time.Location) string {
	if from.IsZero() {
		return "no date"
	}
	a, b := from.In(loc).Format(dateLayout), to.In(loc).Format(dateLayout)
	if a == b {
		return a
	}
	return a + ".." + b
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}

// renderResult prints each group as "[count×] task (assigner → assignee) status, date range"
func renderResult(w io.Writer, res *model.AskResult, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	if res.NeedsClarification() {
		_, err := fmt.Fprintf(w, "%s (%s): %s\n",
			color.YellowString("Clarification needed"), res.Clarification.Reason, res.Clarification.Detail)
		if err != nil {
			return goerr.Wrap(err, "failed to write answer")
		}
		return nil
	}

	ans := res.Answer
	if ans == nil {
		return nil
	}
	if ans.DegradedModeUsed {
		if _, err := fmt.Fprintln(w, color.New(color.Faint).Sprint("(heuristic mode)")); err != nil {
			return goerr.Wrap(err, "failed to write answer")
		}
	}
	if len(ans.Groups) == 0 {
		if _, err := fmt.Fprintln(w, "No matching action items."); err != nil {
			return goerr.Wrap(err, "failed to write answer")
		}
		return nil
	}

	for _, g := range ans.Groups {
		assignee := g.Canonical.Assignee
		if len(g.Assignees) > 0 {
			assignee = strings.Join(g.Assignees, ", ")
		}
		line := fmt.Sprintf("[%d×] %s (%s → %s) %s, %s",
			g.Count,
			color.New(color.Bold).Sprint(g.Canonical.Task),
			orUnknown(g.Canonical.Assigner),
			orUnknown(assignee),
			statusColor(g.Status).Sprint(g.Status),
			dateRange(g.Earliest, g.Latest, loc),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return goerr.Wrap(err, "failed to write answer")
		}
	}

	if _, err := fmt.Fprintf(w, "%d groups from %d rows\n", len(ans.Groups), ans.RowCount); err != nil {
		return goerr.Wrap(err, "failed to write answer")
	}
	return nil
}
