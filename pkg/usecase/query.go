package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
	"github.com/secmon-lab/tasklens/pkg/service/participant"
	"github.com/secmon-lab/tasklens/pkg/service/translator"
	"github.com/secmon-lab/tasklens/pkg/utils/logging"
	"github.com/secmon-lab/tasklens/pkg/utils/safe"
	"golang.org/x/time/rate"
)

// Query defaults
const (
	DefaultRateLimitPerMinute = 10
	DefaultQueryTimeout       = 5 * time.Second
	recentWindowDays          = 7
)

// QueryConfig bounds the query path
type QueryConfig struct {
	Limits model.QueryLimits
	// RateLimitPerMinute caps question translations; zero or less disables the limit
	RateLimitPerMinute  int
	Timeout             time.Duration
	SimilarityThreshold float64
}

func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		Limits:              model.DefaultQueryLimits(),
		RateLimitPerMinute:  DefaultRateLimitPerMinute,
		Timeout:             DefaultQueryTimeout,
		SimilarityThreshold: model.DefaultSimilarityThreshold,
	}
}

// QueryUseCase answers questions through the validation gate and a read-only store
type QueryUseCase struct {
	repo         interfaces.Repository
	translator   translator.Service
	heuristic    translator.Service
	participants *participant.Cache
	people       []model.Person
	cfg          QueryConfig
	limiter      *rate.Limiter
	grouper      *Grouper
	location     *time.Location
	now          func() time.Time
}

func NewQueryUseCase(repo interfaces.Repository, llm translator.Service, participants *participant.Cache, people []model.Person, cfg QueryConfig, loc *time.Location, now func() time.Time) *QueryUseCase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultQueryTimeout
	}
	if loc == nil {
		loc = time.UTC
	}
	cfg.Limits.Location = loc

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimitPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitPerMinute)
	}

	return &QueryUseCase{
		repo:         repo,
		translator:   llm,
		heuristic:    translator.NewHeuristic(),
		participants: participants,
		people:       people,
		cfg:          cfg,
		limiter:      limiter,
		grouper:      NewGrouper(cfg.SimilarityThreshold),
		location:     loc,
		now:          now,
	}
}

// Ask answers a natural-language question. Rejected or unintelligible questions yield a
// clarification and nothing is executed. ErrRateLimited, ErrQueryTimeout and
// ErrStoreUnavailable are returned as errors.
func (uc *QueryUseCase) Ask(ctx context.Context, question string) (*model.AskResult, error) {
	logger := logging.From(ctx)

	q, clarification := ValidateQuestion(question)
	if clarification != nil {
		logger.Info("question rejected", "reason", clarification.Reason, "detail", clarification.Detail)
		return &model.AskResult{Clarification: clarification}, nil
	}

	if !uc.limiter.Allow() {
		return nil, goerr.Wrap(model.ErrRateLimited, "too many questions, try again later",
			goerr.V("per_minute", uc.cfg.RateLimitPerMinute))
	}

	input := translator.Input{
		Question:    q,
		Now:         uc.now().In(uc.location),
		KnownPeople: uc.knownPeople(ctx),
	}

	plan, degraded, err := uc.translate(ctx, input)
	if err != nil {
		if errors.Is(err, translator.ErrNotUnderstood) {
			logger.Info("question not understood", QuestionKey, q)
			return &model.AskResult{Clarification: &model.Clarification{
				Reason: model.ClarificationNotUnderstood,
				Detail: "try naming a person, a status such as open or completed, or a period such as last 7 days",
			}}, nil
		}
		return nil, err
	}

	return uc.execute(ctx, plan, degraded)
}

func (uc *QueryUseCase) translate(ctx context.Context, input translator.Input) (*model.QueryPlan, bool, error) {
	if uc.translator != nil {
		plan, err := uc.translator.Translate(ctx, input)
		if err == nil {
			return plan, false, nil
		}
		if ctx.Err() != nil {
			return nil, false, goerr.Wrap(ctx.Err(), "question cancelled")
		}
		logging.From(ctx).Warn("translator unavailable, falling back to heuristics", "error", err)
	}

	plan, err := uc.heuristic.Translate(ctx, input)
	if err != nil {
		return nil, true, err
	}
	return plan, true, nil
}

// PersonQuery is a structured lookup that skips translation
type PersonQuery struct {
	Name   string
	Recent bool
	Status types.ActionStatus
	Limit  int
}

// QueryPerson lists items where name is the assigner or the assignee. The plan still
// passes the validation gate.
func (uc *QueryUseCase) QueryPerson(ctx context.Context, pq PersonQuery) (*model.AskResult, error) {
	plan := &model.QueryPlan{
		Entity: types.QueryEntityActionItems,
		Intent: types.QueryIntentRead,
		Predicates: []model.Predicate{{
			Field:  types.QueryFieldPerson,
			Op:     types.QueryOpEq,
			Values: []string{strings.TrimSpace(pq.Name)},
		}},
		Limit: pq.Limit,
	}
	if pq.Status != "" {
		plan.Predicates = append(plan.Predicates, model.Predicate{
			Field:  types.QueryFieldStatus,
			Op:     types.QueryOpEq,
			Values: []string{pq.Status.String()},
		})
	}
	if pq.Recent {
		y, m, d := uc.now().In(uc.location).Date()
		from := time.Date(y, m, d, 0, 0, 0, 0, uc.location).AddDate(0, 0, -(recentWindowDays - 1))
		plan.Predicates = append(plan.Predicates, model.Predicate{
			Field:  types.QueryFieldDate,
			Op:     types.QueryOpGte,
			Values: []string{from.Format(model.QueryDateLayout)},
		})
	}

	return uc.execute(ctx, plan, false)
}

func (uc *QueryUseCase) execute(ctx context.Context, plan *model.QueryPlan, degraded bool) (*model.AskResult, error) {
	validated, err := uc.expandAliases(plan).Validate(uc.cfg.Limits)
	if err != nil {
		if errors.Is(err, model.ErrValidationRejected) {
			logging.From(ctx).Info("query plan rejected", "error", err)
			return &model.AskResult{Clarification: &model.Clarification{
				Reason: model.ClarificationValidationRejected,
				Detail: err.Error(),
			}}, nil
		}
		return nil, err
	}

	rows, err := uc.runReadOnly(ctx, validated)
	if err != nil {
		return nil, err
	}

	return &model.AskResult{Answer: AssembleAnswer(rows, uc.grouper, plan, degraded)}, nil
}

// runReadOnly opens a read-only view for the duration of one plan, bounded by the
// query timeout. Store failures are returned without retry.
func (uc *QueryUseCase) runReadOnly(ctx context.Context, plan *model.ValidatedPlan) ([]*model.ActionItem, error) {
	qctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	store, err := uc.repo.OpenReadOnly(qctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open read-only store")
	}
	defer safe.Close(ctx, store)

	rows, err := store.QueryActionItems(qctx, plan)
	if err != nil {
		if errors.Is(qctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && !errors.Is(err, model.ErrQueryTimeout) {
			return nil, goerr.Wrap(model.ErrQueryTimeout, "query exceeded timeout", goerr.V("timeout", uc.cfg.Timeout))
		}
		return nil, goerr.Wrap(err, "failed to execute query")
	}
	return rows, nil
}

// expandAliases returns a copy of plan where person values naming a configured person
// are replaced by the person's name and all aliases
func (uc *QueryUseCase) expandAliases(plan *model.QueryPlan) *model.QueryPlan {
	out := *plan
	out.Predicates = make([]model.Predicate, len(plan.Predicates))
	for i, p := range plan.Predicates {
		p.Values = append([]string(nil), p.Values...)
		switch p.Field {
		case types.QueryFieldPerson, types.QueryFieldAssigner, types.QueryFieldAssignee:
			p.Values = uc.expandNames(p.Values)
		}
		out.Predicates[i] = p
	}
	return &out
}

func (uc *QueryUseCase) expandNames(values []string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(v string) {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}

	for _, v := range values {
		add(v)
		for _, person := range uc.people {
			if person.Matches(v) {
				for _, n := range person.Names() {
					add(n)
				}
			}
		}
	}
	return out
}

func (uc *QueryUseCase) knownPeople(ctx context.Context) []string {
	var names []string
	for _, p := range uc.people {
		names = append(names, p.Names()...)
	}
	if uc.participants != nil {
		directory, err := uc.participants.Get(ctx)
		if err != nil {
			logging.From(ctx).Warn("participant directory unavailable", "error", err)
		}
		names = append(names, directory.Names()...)
	}
	return names
}
