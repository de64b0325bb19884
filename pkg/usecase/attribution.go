package usecase

import (
	"strings"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// AttributeSource picks the batch message a candidate was most likely extracted from:
// the one sharing the most tokens with the context quote (or the task when there is no
// quote). Ties and the no-overlap case go to the later message. msgs must be
// chronological and non-empty.
func AttributeSource(c *model.Candidate, msgs []*model.Message) *model.Message {
	needle := c.ContextQuote
	if strings.TrimSpace(needle) == "" {
		needle = c.Task
	}
	want := tokenize(needle)

	var best *model.Message
	bestScore := -1
	for _, m := range msgs {
		score := 0
		for w := range tokenize(m.Text) {
			if _, ok := want[w]; ok {
				score++
			}
		}
		if score >= bestScore {
			best, bestScore = m, score
		}
	}
	return best
}
