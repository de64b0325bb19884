package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
	"github.com/secmon-lab/tasklens/pkg/repository/memory"
	"github.com/secmon-lab/tasklens/pkg/service/translator"
	"github.com/secmon-lab/tasklens/pkg/usecase"
)

// seedItems stores one source message and the given items attributed to it
func seedItems(t *testing.T, repo interfaces.Repository, items ...*model.ActionItem) {
	t.Helper()
	ctx := context.Background()

	src := newMsg("C1", 0, "U1", "source", "")
	_, err := repo.Message().SaveMany(ctx, []*model.Message{src})
	gt.NoError(t, err).Required()

	for _, it := range items {
		it.MessageID = src.ID
		if it.ExtractedAt.IsZero() {
			it.ExtractedAt = baseTime
		}
	}
	_, err = repo.ActionItem().CreateMany(ctx, items)
	gt.NoError(t, err).Required()
}

func scenarioItems() []*model.ActionItem {
	return []*model.ActionItem{
		{Task: "review the deploy doc", Assigner: "Dan", Assignee: "me", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal},
		{Task: "send invoices", Assigner: "dan", Assignee: "me", Status: types.ActionStatusCompleted, Urgency: types.UrgencyHigh},
		{Task: "book the offsite venue", Assigner: "Eve", Assignee: "me", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal},
		{Task: "ask Dan about budget", Assigner: "Ann", Assignee: "Dan", Status: types.ActionStatusOpen, Urgency: types.UrgencyLow},
	}
}

func TestAsk_AssignerQuestion(t *testing.T) {
	t.Run("heuristic mode when no translator is configured", func(t *testing.T) {
		repo := &spyRepository{Repository: memory.New()}
		seedItems(t, repo, scenarioItems()...)
		writesBefore := repo.writes.Load()

		uc := usecase.New(repo, usecase.WithNow(fixedNow))
		result, err := uc.Query.Ask(context.Background(), "What did Dan ask me to do?")
		gt.NoError(t, err).Required()
		gt.Value(t, result.NeedsClarification()).Equal(false)
		gt.Value(t, result.Answer.DegradedModeUsed).Equal(true)
		gt.Value(t, result.Answer.RowCount).Equal(2)
		for _, g := range result.Answer.Groups {
			for _, m := range g.Members {
				gt.Value(t, m.Assigner == "Dan" || m.Assigner == "dan").Equal(true)
			}
		}

		gt.Value(t, repo.readOnlyOpens.Load()).Equal(int32(1))
		gt.Value(t, repo.writes.Load()).Equal(writesBefore)
	})

	t.Run("translated plan", func(t *testing.T) {
		repo := memory.New()
		seedItems(t, repo, scenarioItems()...)

		tr := &mockTranslator{
			translateFn: func(ctx context.Context, input translator.Input) (*model.QueryPlan, error) {
				gt.Value(t, input.Question).Equal("What did Dan ask me to do?")
				gt.Value(t, input.Now).Equal(fixedNow())
				return &model.QueryPlan{
					Entity: types.QueryEntityActionItems,
					Intent: types.QueryIntentRead,
					Predicates: []model.Predicate{
						{Field: types.QueryFieldAssigner, Op: types.QueryOpEq, Values: []string{"DAN"}},
					},
				}, nil
			},
		}

		uc := usecase.New(repo, usecase.WithTranslator(tr), usecase.WithNow(fixedNow))
		result, err := uc.Query.Ask(context.Background(), "What did Dan ask me to do?")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Answer.DegradedModeUsed).Equal(false)
		gt.Value(t, result.Answer.RowCount).Equal(2)
		gt.Value(t, tr.calls.Load()).Equal(int32(1))
	})
}

func TestAsk_DestructiveQuestion(t *testing.T) {
	repo := &spyRepository{Repository: memory.New()}
	seedItems(t, repo, scenarioItems()...)
	writesBefore := repo.writes.Load()
	tr := &mockTranslator{}

	uc := usecase.New(repo, usecase.WithTranslator(tr))
	result, err := uc.Query.Ask(context.Background(), "What did Dan ask me to do?; DROP TABLE action_items;")
	gt.NoError(t, err).Required()
	gt.Value(t, result.NeedsClarification()).Equal(true)
	gt.Value(t, result.Clarification.Reason).Equal(model.ClarificationValidationRejected)
	gt.Value(t, result.Answer).Nil()

	gt.Value(t, tr.calls.Load()).Equal(int32(0))
	gt.Value(t, repo.readOnlyOpens.Load()).Equal(int32(0))
	gt.Value(t, repo.writes.Load()).Equal(writesBefore)

	count, err := repo.ActionItem().Count(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, count).Equal(4)
}

func TestAsk_PlanValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		plan *model.QueryPlan
	}{
		{
			name: "field outside the allow-list",
			plan: &model.QueryPlan{Predicates: []model.Predicate{
				{Field: "message_id", Op: types.QueryOpEq, Values: []string{"1"}},
			}},
		},
		{
			name: "write intent",
			plan: &model.QueryPlan{Intent: "delete"},
		},
		{
			name: "destructive value",
			plan: &model.QueryPlan{Predicates: []model.Predicate{
				{Field: types.QueryFieldText, Op: types.QueryOpContains, Values: []string{"x'; DELETE FROM action_items; --"}},
			}},
		},
		{
			name: "unparsable date",
			plan: &model.QueryPlan{Predicates: []model.Predicate{
				{Field: types.QueryFieldDate, Op: types.QueryOpGte, Values: []string{"last tuesday"}},
			}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			repo := &spyRepository{Repository: memory.New()}
			tr := &mockTranslator{
				translateFn: func(ctx context.Context, input translator.Input) (*model.QueryPlan, error) {
					return tc.plan, nil
				},
			}

			uc := usecase.New(repo, usecase.WithTranslator(tr))
			result, err := uc.Query.Ask(context.Background(), "show me everything please")
			gt.NoError(t, err).Required()
			gt.Value(t, result.NeedsClarification()).Equal(true)
			gt.Value(t, result.Clarification.Reason).Equal(model.ClarificationValidationRejected)
			gt.Value(t, repo.readOnlyOpens.Load()).Equal(int32(0))
		})
	}
}

func TestAsk_RowLimitIsCapped(t *testing.T) {
	repo := memory.New()
	var items []*model.ActionItem
	for range 8 {
		items = append(items, &model.ActionItem{Task: "same task", Assigner: "Dan", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal})
	}
	seedItems(t, repo, items...)

	tr := &mockTranslator{
		translateFn: func(ctx context.Context, input translator.Input) (*model.QueryPlan, error) {
			return &model.QueryPlan{Limit: 1000}, nil
		},
	}
	cfg := usecase.DefaultQueryConfig()
	cfg.Limits = model.QueryLimits{MaxRows: 5, DefaultRows: 3}

	uc := usecase.New(repo, usecase.WithTranslator(tr), usecase.WithQueryConfig(cfg))
	result, err := uc.Query.Ask(context.Background(), "everything from Dan")
	gt.NoError(t, err).Required()
	gt.Value(t, result.Answer.RowCount).Equal(5)
}

func TestAsk_TranslatorFallback(t *testing.T) {
	repo := memory.New()
	seedItems(t, repo, scenarioItems()...)

	t.Run("unavailable translator degrades to heuristics", func(t *testing.T) {
		tr := &mockTranslator{
			translateFn: func(ctx context.Context, input translator.Input) (*model.QueryPlan, error) {
				return nil, goerr.Wrap(model.ErrTransientService, "503 service unavailable")
			},
		}
		uc := usecase.New(repo, usecase.WithTranslator(tr), usecase.WithNow(fixedNow))

		result, err := uc.Query.Ask(context.Background(), "which tasks are still open?")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Answer.DegradedModeUsed).Equal(true)
		gt.Value(t, result.Answer.RowCount).Equal(3)
	})

	t.Run("nothing recognized asks for clarification", func(t *testing.T) {
		uc := usecase.New(repo, usecase.WithTranslator(&mockTranslator{}))

		result, err := uc.Query.Ask(context.Background(), "hmm, so?")
		gt.NoError(t, err).Required()
		gt.Value(t, result.NeedsClarification()).Equal(true)
		gt.Value(t, result.Clarification.Reason).Equal(model.ClarificationNotUnderstood)
	})

	t.Run("invalid input never reaches the translator", func(t *testing.T) {
		tr := &mockTranslator{}
		uc := usecase.New(repo, usecase.WithTranslator(tr))

		result, err := uc.Query.Ask(context.Background(), "hi")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Clarification.Reason).Equal(model.ClarificationInvalidInput)
		gt.Value(t, tr.calls.Load()).Equal(int32(0))
	})
}

func TestAsk_RateLimit(t *testing.T) {
	repo := memory.New()
	tr := &mockTranslator{
		translateFn: func(ctx context.Context, input translator.Input) (*model.QueryPlan, error) {
			return &model.QueryPlan{}, nil
		},
	}
	cfg := usecase.DefaultQueryConfig()
	cfg.RateLimitPerMinute = 2

	uc := usecase.New(repo, usecase.WithTranslator(tr), usecase.WithQueryConfig(cfg))
	for range 2 {
		_, err := uc.Query.Ask(context.Background(), "what is open?")
		gt.NoError(t, err).Required()
	}

	_, err := uc.Query.Ask(context.Background(), "what is open?")
	gt.Error(t, err).Is(model.ErrRateLimited)
	gt.Value(t, tr.calls.Load()).Equal(int32(2))

	// structured lookups do not consume translator budget
	_, err = uc.Query.QueryPerson(context.Background(), usecase.PersonQuery{Name: "Dan"})
	gt.NoError(t, err)
}

func TestAsk_Timeout(t *testing.T) {
	repo := &spyRepository{
		Repository: memory.New(),
		openFn: func(ctx context.Context) (interfaces.ReadOnlyStore, error) {
			return slowStore{}, nil
		},
	}
	cfg := usecase.DefaultQueryConfig()
	cfg.Timeout = 20 * time.Millisecond

	uc := usecase.New(repo, usecase.WithQueryConfig(cfg))
	start := time.Now()
	_, err := uc.Query.QueryPerson(context.Background(), usecase.PersonQuery{Name: "Dan"})
	gt.Error(t, err).Is(model.ErrQueryTimeout)
	gt.Bool(t, time.Since(start) < 5*time.Second).True()
}

func TestAsk_StoreUnavailable(t *testing.T) {
	repo := &spyRepository{
		Repository: memory.New(),
		openFn: func(ctx context.Context) (interfaces.ReadOnlyStore, error) {
			return nil, goerr.Wrap(model.ErrStoreUnavailable, "no such file")
		},
	}

	uc := usecase.New(repo)
	_, err := uc.Query.QueryPerson(context.Background(), usecase.PersonQuery{Name: "Dan"})
	gt.Error(t, err).Is(model.ErrStoreUnavailable)
	gt.Value(t, repo.readOnlyOpens.Load()).Equal(int32(1))
}

func TestQueryPerson(t *testing.T) {
	repo := memory.New()
	recent := &model.ActionItem{Task: "review the deploy doc", Assigner: "Dan", Assignee: "me", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal, MentionedDate: time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC)}
	old := &model.ActionItem{Task: "archive the wiki", Assigner: "Dan", Assignee: "me", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal, MentionedDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)}
	done := &model.ActionItem{Task: "fix the build", Assigner: "Ann", Assignee: "dan", Status: types.ActionStatusCompleted, Urgency: types.UrgencyNormal, MentionedDate: time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC)}
	seedItems(t, repo, recent, old, done)

	uc := usecase.New(repo, usecase.WithNow(fixedNow))
	ctx := context.Background()

	t.Run("assigner or assignee", func(t *testing.T) {
		result, err := uc.Query.QueryPerson(ctx, usecase.PersonQuery{Name: "DAN"})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Answer.RowCount).Equal(3)
	})

	t.Run("recent and status", func(t *testing.T) {
		result, err := uc.Query.QueryPerson(ctx, usecase.PersonQuery{Name: "Dan", Recent: true, Status: types.ActionStatusOpen})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Answer.RowCount).Equal(1)
		gt.Value(t, result.Answer.Groups[0].Canonical.Task).Equal("review the deploy doc")
	})

	t.Run("limit", func(t *testing.T) {
		result, err := uc.Query.QueryPerson(ctx, usecase.PersonQuery{Name: "Dan", Limit: 1})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Answer.RowCount).Equal(1)
	})

	t.Run("empty name is rejected without execution", func(t *testing.T) {
		result, err := uc.Query.QueryPerson(ctx, usecase.PersonQuery{Name: "  "})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Clarification.Reason).Equal(model.ClarificationValidationRejected)
	})
}

func TestAsk_Aliases(t *testing.T) {
	repo := memory.New()
	seedItems(t, repo,
		&model.ActionItem{Task: "review the deploy doc", Assigner: "Daniel Kim", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal},
		&model.ActionItem{Task: "send invoices", Assigner: "dkim", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal},
		&model.ActionItem{Task: "book the venue", Assigner: "Eve", Status: types.ActionStatusOpen, Urgency: types.UrgencyNormal},
	)

	people := []model.Person{{Name: "Daniel Kim", Aliases: []string{"Dan", "dkim"}}}
	uc := usecase.New(repo, usecase.WithPeople(people), usecase.WithNow(fixedNow))

	result, err := uc.Query.Ask(context.Background(), "What did Dan ask me to do?")
	gt.NoError(t, err).Required()
	gt.Value(t, result.Answer.RowCount).Equal(2)

	expanded := usecase.ExpandAliases(uc.Query, &model.QueryPlan{Predicates: []model.Predicate{
		{Field: types.QueryFieldAssigner, Op: types.QueryOpEq, Values: []string{"dan"}},
		{Field: types.QueryFieldText, Op: types.QueryOpContains, Values: []string{"dan"}},
	}})
	gt.Value(t, expanded.Predicates[0].Values).Equal([]string{"dan", "Daniel Kim", "dkim"})
	gt.Value(t, expanded.Predicates[1].Values).Equal([]string{"dan"})
}
