package translator

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

const (
	recentDays       = 7
	maxTextTerms     = 5
	minTextTermRunes = 4
)

var (
	namePart = `([\p{L}][\p{L}\p{N}._'-]*)`

	assignerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bdid\s+` + namePart + `\s+ask\b`),
		regexp.MustCompile(`(?i)\bhas\s+` + namePart + `\s+asked\b`),
		regexp.MustCompile(`(?i)\b` + namePart + `\s+(?:asked|requested|wanted)\b`),
		regexp.MustCompile(`(?i)\b(?:from|by)\s+` + namePart),
	}
	assigneePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bassigned\s+to\s+` + namePart),
		regexp.MustCompile(`(?i)\bfor\s+` + namePart),
		regexp.MustCompile(`(?i)\b(?:does|should|must)\s+` + namePart + `\s+(?:do|owe|handle|finish)\b`),
	}

	lastNDaysPattern = regexp.MustCompile(`(?i)\b(?:last|past)\s+(\d{1,3})\s+days?\b`)
	periodPatterns   = []struct {
		re   *regexp.Regexp
		days int
	}{
		{regexp.MustCompile(`(?i)\b(?:last|past|this)\s+week\b`), 7},
		{regexp.MustCompile(`(?i)\b(?:last|past|this)\s+month\b`), 30},
		{regexp.MustCompile(`(?i)\btoday\b`), 1},
		{regexp.MustCompile(`(?i)\brecent(?:ly)?\b`), recentDays},
	}

	highUrgencyPattern = regexp.MustCompile(`(?i)\b(?:urgent|urgently|asap|high\s+priority)\b`)
	lowUrgencyPattern  = regexp.MustCompile(`(?i)\blow\s+priority\b`)
)

var statusWords = map[string]types.ActionStatus{
	"open":        types.ActionStatusOpen,
	"still":       types.ActionStatusOpen,
	"pending":     types.ActionStatusOpen,
	"outstanding": types.ActionStatusOpen,
	"todo":        types.ActionStatusOpen,
	"unfinished":  types.ActionStatusOpen,
	"completed":   types.ActionStatusCompleted,
	"complete":    types.ActionStatusCompleted,
	"done":        types.ActionStatusCompleted,
	"finished":    types.ActionStatusCompleted,
	"closed":      types.ActionStatusCompleted,
}

// words that never name a person and never become text terms
var stopWords = toSet(
	"a", "an", "the", "i", "me", "my", "mine", "we", "us", "our", "you", "your", "he", "she",
	"they", "them", "their", "it", "its", "who", "whom", "what", "which", "when", "where", "why",
	"how", "anyone", "someone", "everyone", "anybody", "somebody", "nobody", "people", "person",
	"all", "any", "some", "many", "much", "more", "most", "other", "others", "this", "that",
	"these", "those", "there", "here", "is", "are", "was", "were", "be", "been", "being", "do",
	"does", "did", "done", "have", "has", "had", "ask", "asked", "asks", "request", "requested",
	"want", "wanted", "need", "needs", "needed", "should", "could", "would", "will", "must",
	"please", "show", "list", "give", "tell", "find", "get", "make", "made", "about", "with",
	"from", "for", "into", "onto", "over", "than", "then", "just", "also", "only", "still",
	"item", "items", "task", "tasks", "action", "actions", "todo", "todos", "thing", "things",
	"stuff", "anything", "something", "everything", "nothing", "last", "past", "next", "days",
	"day", "week", "weeks", "month", "months", "today", "yesterday", "recent", "recently",
	"urgent", "urgently", "priority", "high", "low", "normal", "asap", "assigned", "owe", "owes",
	"handle", "finish", "open", "pending", "outstanding", "completed", "complete", "finished",
	"closed", "unfinished", "status", "right", "now", "currently", "lately",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// heuristic is a deterministic translator over a restricted phrase set. It is used
// when the LLM translator is unavailable or returns unusable output.
type heuristic struct{}

// NewHeuristic returns the fallback translator
func NewHeuristic() Service {
	return &heuristic{}
}

func (h *heuristic) Translate(ctx context.Context, input Input) (*model.QueryPlan, error) {
	question := strings.TrimSpace(input.Question)
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	plan := &model.QueryPlan{
		Entity: types.QueryEntityActionItems,
		Intent: types.QueryIntentRead,
		Sort:   &model.SortSpec{Field: types.SortFieldDate, Descending: true},
	}
	consumed := map[string]struct{}{}

	if name := matchName(question, assignerPatterns); name != "" {
		plan.Predicates = append(plan.Predicates, personPredicate(types.QueryFieldAssigner, name))
		consumed[strings.ToLower(name)] = struct{}{}
	}
	if name := matchName(question, assigneePatterns); name != "" {
		if _, dup := consumed[strings.ToLower(name)]; !dup {
			plan.Predicates = append(plan.Predicates, personPredicate(types.QueryFieldAssignee, name))
			consumed[strings.ToLower(name)] = struct{}{}
		}
	}
	for _, person := range knownPeopleIn(question, input.KnownPeople) {
		key := strings.ToLower(person)
		if _, dup := consumed[key]; dup {
			continue
		}
		plan.Predicates = append(plan.Predicates, personPredicate(types.QueryFieldPerson, person))
		for _, w := range strings.Fields(key) {
			consumed[w] = struct{}{}
		}
		consumed[key] = struct{}{}
	}

	if status, ok := matchStatus(question); ok {
		plan.Predicates = append(plan.Predicates, model.Predicate{
			Field:  types.QueryFieldStatus,
			Op:     types.QueryOpEq,
			Values: []string{status.String()},
		})
	}

	if days, ok := matchPeriod(question); ok {
		from := startOfDay(now).AddDate(0, 0, -(days - 1))
		plan.Predicates = append(plan.Predicates, model.Predicate{
			Field:  types.QueryFieldDate,
			Op:     types.QueryOpGte,
			Values: []string{from.Format(model.QueryDateLayout)},
		})
	}

	switch {
	case lowUrgencyPattern.MatchString(question):
		plan.Predicates = append(plan.Predicates, urgencyPredicate(types.UrgencyLow))
	case highUrgencyPattern.MatchString(question):
		plan.Predicates = append(plan.Predicates, urgencyPredicate(types.UrgencyHigh))
	}

	if terms := textTerms(question, consumed); len(terms) > 0 {
		plan.Predicates = append(plan.Predicates, model.Predicate{
			Field:  types.QueryFieldText,
			Op:     types.QueryOpContains,
			Values: terms,
		})
	}

	if len(plan.Predicates) == 0 {
		return nil, goerr.Wrap(ErrNotUnderstood, "no recognizable filter in question", goerr.V("question", question))
	}
	return plan, nil
}

func personPredicate(field types.QueryField, name string) model.Predicate {
	return model.Predicate{Field: field, Op: types.QueryOpEq, Values: []string{name}}
}

func urgencyPredicate(u types.Urgency) model.Predicate {
	return model.Predicate{Field: types.QueryFieldUrgency, Op: types.QueryOpEq, Values: []string{u.String()}}
}

func matchName(question string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(question, -1) {
			name := strings.TrimSuffix(strings.TrimSuffix(m[1], "'s"), "'")
			name = strings.TrimRight(name, ".-")
			if name == "" {
				continue
			}
			if _, stop := stopWords[strings.ToLower(name)]; stop {
				continue
			}
			if _, isStatus := statusWords[strings.ToLower(name)]; isStatus {
				continue
			}
			return name
		}
	}
	return ""
}

func knownPeopleIn(question string, people []string) []string {
	lower := strings.ToLower(question)
	var found []string
	for _, p := range people {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(p)) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(lower) {
			found = append(found, p)
		}
	}
	return found
}

func matchStatus(question string) (types.ActionStatus, bool) {
	for _, w := range words(question) {
		if s, ok := statusWords[w]; ok {
			return s, true
		}
	}
	return "", false
}

func matchPeriod(question string) (int, bool) {
	if m := lastNDaysPattern.FindStringSubmatch(question); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n, true
		}
	}
	for _, p := range periodPatterns {
		if p.re.MatchString(question) {
			return p.days, true
		}
	}
	return 0, false
}

func textTerms(question string, consumed map[string]struct{}) []string {
	var terms []string
	seen := map[string]struct{}{}
	for _, w := range words(question) {
		if len([]rune(w)) < minTextTermRunes {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, used := consumed[w]; used {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
		if len(terms) == maxTextTerms {
			break
		}
	}
	return terms
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
