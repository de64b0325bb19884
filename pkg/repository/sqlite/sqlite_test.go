package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

func TestOpenReadOnly_MissingFile(t *testing.T) {
	_, err := OpenReadOnly(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	gt.Error(t, err).Is(model.ErrStoreUnavailable)
}

func TestReadOnlyStore_RejectsWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasklens.db")

	repo, err := New(ctx, path)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = repo.Close() })

	ro, err := OpenReadOnly(ctx, path)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = ro.Close() })

	store, ok := ro.(*readOnlyStore)
	gt.Bool(t, ok).True()

	_, err = store.db.ExecContext(ctx, `DELETE FROM action_items`)
	gt.Value(t, err).NotNil()
	_, err = store.db.ExecContext(ctx, `DROP TABLE action_items`)
	gt.Value(t, err).NotNil()

	var name string
	gt.NoError(t, repo.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'action_items'`).Scan(&name)).Required()
	gt.Value(t, name).Equal("action_items")
}

func TestBuildQuery_BindsValues(t *testing.T) {
	plan := &model.QueryPlan{
		Predicates: []model.Predicate{
			{Field: types.QueryFieldAssigner, Op: types.QueryOpEq, Values: []string{"Dan", "itzaferg"}},
			{Field: types.QueryFieldText, Op: types.QueryOpContains, Values: []string{"o'brien"}},
			{Field: types.QueryFieldDate, Op: types.QueryOpLte, Values: []string{"2025-10-31"}},
		},
		Limit: 10,
	}
	vp, err := plan.Validate(model.DefaultQueryLimits())
	gt.NoError(t, err).Required()

	query, args := buildQuery(vp)
	gt.Bool(t, strings.Contains(query, "o'brien")).False()
	gt.Bool(t, strings.Contains(query, "itzaferg")).False()
	gt.String(t, query).Contains("LOWER(ai.assigner) IN (?, ?)")
	gt.String(t, query).Contains("LIMIT ?")
	gt.Value(t, args[0]).Equal(any("dan"))
	gt.Value(t, args[1]).Equal(any("itzaferg"))
	gt.Value(t, args[4]).Equal(any("2025-10-31"))
	gt.Value(t, args[5]).Equal(any(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC).UnixNano()))
	gt.Value(t, args[6]).Equal(any("+0 seconds"))
	gt.Value(t, args[len(args)-1]).Equal(any(10))
}

func TestBuildQuery_DatesInPlanLocation(t *testing.T) {
	plan := &model.QueryPlan{
		Predicates: []model.Predicate{
			{Field: types.QueryFieldDate, Op: types.QueryOpEq, Values: []string{"2025-10-06"}},
		},
	}
	limits := model.DefaultQueryLimits()
	limits.Location = time.FixedZone("UTC+9", 9*60*60)
	vp, err := plan.Validate(limits)
	gt.NoError(t, err).Required()

	query, args := buildQuery(vp)
	gt.String(t, query).Contains("m.posted_at >= ? AND m.posted_at < ?")
	gt.Value(t, args[0]).Equal(any("2025-10-06"))
	gt.Value(t, args[1]).Equal(any(time.Date(2025, 10, 5, 15, 0, 0, 0, time.UTC).UnixNano()))
	gt.Value(t, args[2]).Equal(any(time.Date(2025, 10, 6, 15, 0, 0, 0, time.UTC).UnixNano()))
	gt.Value(t, args[3]).Equal(any("+32400 seconds"))
}
