package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// MessageID is the store-assigned identifier of an imported message
type MessageID int64

// Message is a chat message imported from an archive. It never changes after import
// except for DisplayName, which is backfilled from the participant directory.
type Message struct {
	ID          MessageID
	ChannelID   string
	TS          string // Slack timestamp, unique within a channel
	UserID      string
	DisplayName string // empty when unresolved
	Text        string
	ThreadTS    string // thread root timestamp, empty unless the message is a reply
	PostedAt    time.Time
}

// IsReply reports whether the message belongs to a thread rooted at another message
func (m *Message) IsReply() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

// AuthorName returns the display name, or the raw user ID when none is known
func (m *Message) AuthorName() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.UserID
}

// ParseSlackTS converts a Slack timestamp such as "1696600000.000100" to time.Time
func ParseSlackTS(ts string) (time.Time, error) {
	sec, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid slack timestamp", goerr.V("ts", ts))
	}

	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		nsec, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, goerr.Wrap(err, "invalid slack timestamp fraction", goerr.V("ts", ts))
		}
	}

	return time.Unix(s, nsec).UTC(), nil
}
