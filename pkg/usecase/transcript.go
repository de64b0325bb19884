package usecase

import (
	"strings"
	"time"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/service/participant"
)

const (
	transcriptTimeLayout = "2006-01-02 15:04"
	ancestorPrefix       = "  ↳ "
	unknownAuthor        = "unknown"
)

// TranscriptFormatter renders batches as one line per message:
//
//	2025-10-06 09:12 — Ann: I'll get you screenshots
//	2025-10-06 17:40 — Lee: lunch?
//	  ↳ 2025-10-06 09:12 — Ann: I'll get you screenshots
//	2025-10-07 10:30 — Bob: Did you make progress?
//
// Thread ancestors precede the reply with the ↳ prefix.
type TranscriptFormatter struct {
	directory *participant.Directory
	location  *time.Location
}

func NewTranscriptFormatter(directory *participant.Directory, loc *time.Location) *TranscriptFormatter {
	if loc == nil {
		loc = time.UTC
	}
	return &TranscriptFormatter{directory: directory, location: loc}
}

// Format renders msgs in the given order with ancestors keyed by reply ID
func (f *TranscriptFormatter) Format(msgs []*model.Message, ancestors map[model.MessageID][]*model.Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		for _, a := range ancestors[m.ID] {
			sb.WriteString(ancestorPrefix)
			f.writeLine(&sb, a)
		}
		f.writeLine(&sb, m)
	}
	return sb.String()
}

func (f *TranscriptFormatter) writeLine(sb *strings.Builder, m *model.Message) {
	sb.WriteString(m.PostedAt.In(f.location).Format(transcriptTimeLayout))
	sb.WriteString(" — ")
	sb.WriteString(f.authorName(m))
	sb.WriteString(": ")
	sb.WriteString(strings.Join(strings.Fields(m.Text), " "))
	sb.WriteByte('\n')
}

func (f *TranscriptFormatter) authorName(m *model.Message) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	if m.UserID == "" {
		return unknownAuthor
	}
	return f.directory.Lookup(m.UserID)
}
