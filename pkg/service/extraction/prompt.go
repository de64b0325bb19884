package extraction

import (
	_ "embed"
	"strings"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

//go:embed prompt/system.md
var systemPrompt string

func buildUserPrompt(input Input) string {
	var sb strings.Builder
	if !input.ReferenceDate.IsZero() {
		sb.WriteString("Reference date: ")
		sb.WriteString(input.ReferenceDate.Format(model.MentionedDateLayout))
		sb.WriteString("\n\n")
	}
	if input.AssignerFocus != "" {
		sb.WriteString("Only report action items requested by ")
		sb.WriteString(input.AssignerFocus)
		sb.WriteString(".\n\n")
	}
	sb.WriteString("Transcript:\n")
	sb.WriteString(input.Transcript)
	sb.WriteString("\n")
	return sb.String()
}
