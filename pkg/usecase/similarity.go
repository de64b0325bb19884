package usecase

import (
	"sort"
	"strings"
	"unicode"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/domain/types"
)

// Grouper clusters near-duplicate action items for display
type Grouper struct {
	threshold float64
}

// NewGrouper returns a Grouper. A threshold outside (0, 1] falls back to the default.
func NewGrouper(threshold float64) *Grouper {
	if threshold <= 0 || threshold > 1 {
		threshold = model.DefaultSimilarityThreshold
	}
	return &Grouper{threshold: threshold}
}

type tokenSet map[string]struct{}

// NormalizeTask lowercases text and replaces punctuation and symbols with spaces
func NormalizeTask(s string) string {
	return strings.Join(strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, s)), " ")
}

func tokenize(s string) tokenSet {
	set := make(tokenSet)
	for _, w := range strings.Fields(NormalizeTask(s)) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard is |a ∩ b| / |a ∪ b| over token sets. Two empty sets are identical.
func Jaccard(a, b string) float64 {
	return jaccard(tokenize(a), tokenize(b))
}

func jaccard(a, b tokenSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func sameAssigner(a, b *model.ActionItem) bool {
	return a.Assigner == b.Assigner
}

type groupState struct {
	group  *model.SimilarityGroup
	tokens tokenSet
}

// Group processes items in creation order. Each item joins the first group whose
// canonical (earliest member) has the same assigner and a token similarity of at least
// the threshold, otherwise it starts a new group. Groups are ordered by member count,
// then by most recent date.
func (g *Grouper) Group(items []*model.ActionItem) []*model.SimilarityGroup {
	ordered := make([]*model.ActionItem, 0, len(items))
	for _, it := range items {
		if it != nil {
			ordered = append(ordered, it)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].ExtractedAt.Equal(ordered[j].ExtractedAt) {
			return ordered[i].ExtractedAt.Before(ordered[j].ExtractedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var states []*groupState
	for _, item := range ordered {
		tokens := tokenize(item.Task)
		var joined *groupState
		for _, st := range states {
			if sameAssigner(st.group.Canonical, item) && jaccard(st.tokens, tokens) >= g.threshold {
				joined = st
				break
			}
		}
		if joined == nil {
			joined = &groupState{
				group:  &model.SimilarityGroup{Canonical: item},
				tokens: tokens,
			}
			states = append(states, joined)
		}
		addMember(joined.group, item)
	}

	groups := make([]*model.SimilarityGroup, len(states))
	for i, st := range states {
		st.group.Status = combinedStatus(st.group)
		groups[i] = st.group
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if !a.Latest.Equal(b.Latest) {
			return a.Latest.After(b.Latest)
		}
		return a.Canonical.ID < b.Canonical.ID
	})
	return groups
}

func addMember(g *model.SimilarityGroup, item *model.ActionItem) {
	g.Members = append(g.Members, item)
	g.MemberIDs = append(g.MemberIDs, item.ID)
	g.Count++

	d := item.EffectiveDate()
	if g.Earliest.IsZero() || d.Before(g.Earliest) {
		g.Earliest = d
	}
	if d.After(g.Latest) {
		g.Latest = d
	}

	if a := strings.TrimSpace(item.Assignee); a != "" {
		for _, existing := range g.Assignees {
			if strings.EqualFold(existing, a) {
				return
			}
		}
		g.Assignees = append(g.Assignees, a)
	}
}

// combinedStatus is completed when every member is completed, open when any member is
// open and the canonical status otherwise
func combinedStatus(g *model.SimilarityGroup) types.ActionStatus {
	allCompleted := true
	for _, m := range g.Members {
		if m.Status == types.ActionStatusOpen {
			return types.ActionStatusOpen
		}
		if m.Status != types.ActionStatusCompleted {
			allCompleted = false
		}
	}
	if allCompleted && len(g.Members) > 0 {
		return types.ActionStatusCompleted
	}
	return g.Canonical.Status
}
