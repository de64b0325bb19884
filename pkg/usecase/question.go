package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

const (
	minQuestionRunes = 5
	maxQuestionRunes = 500
)

const allowedQuestionPunct = ".,?!'\"-:/()&@#%’‘“”"

// ValidateQuestion trims q and checks it before any translation. Destructive statements
// are rejected as not permitted; length and character problems as invalid input.
func ValidateQuestion(q string) (string, *model.Clarification) {
	q = strings.TrimSpace(q)

	if kw, found := model.DetectDestructiveStatement(q); found {
		return q, &model.Clarification{
			Reason: model.ClarificationValidationRejected,
			Detail: "the question contains a statement that could modify data (" + kw + ")",
		}
	}

	n := utf8.RuneCountInString(q)
	if n < minQuestionRunes || n > maxQuestionRunes {
		return q, &model.Clarification{
			Reason: model.ClarificationInvalidInput,
			Detail: "the question must be between 5 and 500 characters",
		}
	}

	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsMark(r) {
			continue
		}
		if strings.ContainsRune(allowedQuestionPunct, r) {
			continue
		}
		return q, &model.Clarification{
			Reason: model.ClarificationInvalidInput,
			Detail: "the question contains an unsupported character: " + string(r),
		}
	}

	return q, nil
}
