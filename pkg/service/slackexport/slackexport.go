package slackexport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/utils/safe"
	"github.com/slack-go/slack"
)

// UnknownChannel is used when neither the file nor the caller names a channel
const UnknownChannel = "unknown"

// subtypes that carry no conversational content
var skippedSubtypes = map[string]struct{}{
	"channel_join":      {},
	"channel_leave":     {},
	"channel_topic":     {},
	"channel_purpose":   {},
	"channel_name":      {},
	"channel_archive":   {},
	"channel_unarchive": {},
	"group_join":        {},
	"group_leave":       {},
	"bot_message":       {},
	"bot_add":           {},
	"bot_remove":        {},
	"message_deleted":   {},
	"pinned_item":       {},
	"unpinned_item":     {},
	"tombstone":         {},
}

// profile fields embedded in exported messages
type exportedProfile struct {
	UserProfile *struct {
		DisplayName string `json:"display_name"`
		RealName    string `json:"real_name"`
	} `json:"user_profile"`
}

// Channel is the decoded content of one export file
type Channel struct {
	ID       string
	Name     string
	Messages []*model.Message
	// Skipped counts system messages, bot messages and messages without text
	Skipped int
}

// slackdump writes one channel per file in this shape
type dump struct {
	ChannelID string            `json:"channel_id"`
	Name      string            `json:"name"`
	Messages  []json.RawMessage `json:"messages"`
}

// ReadFile decodes a workspace export day file or a slackdump channel file.
// channelID overrides the channel recorded in the file when not empty.
func ReadFile(ctx context.Context, path, channelID string) (*Channel, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open export file", goerr.V(model.PathKey, path))
	}
	defer safe.Close(ctx, f)

	ch, err := Decode(f, channelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode export file", goerr.V(model.PathKey, path))
	}
	return ch, nil
}

// Decode reads either a JSON array of messages (workspace export) or a slackdump
// object with channel_id, name and messages.
func Decode(r io.Reader, channelID string) (*Channel, error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err != nil {
		return nil, goerr.Wrap(err, "empty export")
	}

	ch := &Channel{}
	var raw []json.RawMessage

	switch first {
	case '[':
		if err := json.NewDecoder(br).Decode(&raw); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message array")
		}
	case '{':
		var d dump
		if err := json.NewDecoder(br).Decode(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode channel dump")
		}
		ch.ID = d.ChannelID
		ch.Name = d.Name
		raw = d.Messages
	default:
		return nil, goerr.New("unrecognized export format", goerr.V("first_byte", string(first)))
	}

	if channelID != "" {
		ch.ID = channelID
	}

	for _, elem := range raw {
		msg, ok := convert(elem, ch.ID)
		if !ok {
			ch.Skipped++
			continue
		}
		ch.Messages = append(ch.Messages, msg)
	}

	if ch.ID == "" {
		ch.ID = UnknownChannel
		for _, m := range ch.Messages {
			if m.ChannelID != "" {
				ch.ID = m.ChannelID
				break
			}
		}
	}
	for _, m := range ch.Messages {
		if m.ChannelID == "" {
			m.ChannelID = ch.ID
		}
	}

	model.SortMessages(ch.Messages)
	return ch, nil
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF:
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func convert(elem json.RawMessage, channelID string) (*model.Message, bool) {
	var raw slack.Message
	if err := json.Unmarshal(elem, &raw); err != nil {
		return nil, false
	}
	var profile exportedProfile
	_ = json.Unmarshal(elem, &profile)

	if _, skip := skippedSubtypes[raw.SubType]; skip {
		return nil, false
	}
	if raw.BotID != "" && raw.User == "" {
		return nil, false
	}

	text := strings.TrimSpace(raw.Text)
	if text == "" || raw.Timestamp == "" {
		return nil, false
	}

	postedAt, err := model.ParseSlackTS(raw.Timestamp)
	if err != nil {
		return nil, false
	}

	if channelID == "" {
		channelID = raw.Channel
	}

	msg := &model.Message{
		ChannelID: channelID,
		TS:        raw.Timestamp,
		UserID:    raw.User,
		Text:      text,
		PostedAt:  postedAt,
	}
	if raw.ThreadTimestamp != "" && raw.ThreadTimestamp != raw.Timestamp {
		msg.ThreadTS = raw.ThreadTimestamp
	}
	if profile.UserProfile != nil {
		msg.DisplayName = firstNonEmpty(profile.UserProfile.DisplayName, profile.UserProfile.RealName)
	}
	if msg.UserID == "" {
		msg.UserID = raw.Username
	}

	return msg, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
