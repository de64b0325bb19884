package slackexport_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tasklens/pkg/service/slackexport"
)

const dumpJSON = `{
  "channel_id": "C0DUMP",
  "name": "ops",
  "messages": [
    {"type":"message","user":"U002","text":"Did you make progress?","ts":"1759795200.000200","thread_ts":"1759708800.000100"},
    {"type":"message","user":"U001","text":"I'll get you screenshots","ts":"1759708800.000100","thread_ts":"1759708800.000100","user_profile":{"display_name":"","real_name":"Ann Lee"}},
    {"type":"message","subtype":"channel_join","user":"U003","text":"<@U003> has joined the channel","ts":"1759708700.000000"},
    {"type":"message","subtype":"bot_message","bot_id":"B01","text":"deploy finished","ts":"1759708750.000000"},
    {"type":"message","user":"U001","text":"   ","ts":"1759708760.000000"}
  ]
}`

func TestDecode_SlackdumpChannel(t *testing.T) {
	ch, err := slackexport.Decode(strings.NewReader(dumpJSON), "")
	gt.NoError(t, err).Required()

	gt.Value(t, ch.ID).Equal("C0DUMP")
	gt.Value(t, ch.Name).Equal("ops")
	gt.Value(t, ch.Skipped).Equal(3)
	gt.Array(t, ch.Messages).Length(2).Required()

	root := ch.Messages[0]
	gt.Value(t, root.UserID).Equal("U001")
	gt.Value(t, root.ThreadTS).Equal("")
	gt.Value(t, root.DisplayName).Equal("Ann Lee")
	gt.Value(t, root.ChannelID).Equal("C0DUMP")

	reply := ch.Messages[1]
	gt.Bool(t, reply.IsReply()).True()
	gt.Value(t, reply.ThreadTS).Equal("1759708800.000100")
	gt.Bool(t, reply.PostedAt.After(root.PostedAt)).True()
}

func TestDecode_WorkspaceExportArray(t *testing.T) {
	input := "\n  [" + `{"type":"message","user":"U001","text":"please review the deck","ts":"1759708800.000100"}` + "]"

	t.Run("channel falls back to unknown", func(t *testing.T) {
		ch, err := slackexport.Decode(strings.NewReader(input), "")
		gt.NoError(t, err).Required()
		gt.Value(t, ch.ID).Equal(slackexport.UnknownChannel)
		gt.Value(t, ch.Messages[0].ChannelID).Equal(slackexport.UnknownChannel)
	})

	t.Run("explicit channel wins", func(t *testing.T) {
		ch, err := slackexport.Decode(strings.NewReader(input), "C0GEN")
		gt.NoError(t, err).Required()
		gt.Value(t, ch.ID).Equal("C0GEN")
		gt.Value(t, ch.Messages[0].ChannelID).Equal("C0GEN")
	})
}

func TestDecode_Invalid(t *testing.T) {
	for name, input := range map[string]string{
		"empty":     "   ",
		"scalar":    `"hello"`,
		"truncated": `[{"ts":`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := slackexport.Decode(strings.NewReader(input), "")
			gt.Value(t, err).NotNil()
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.json")
	gt.NoError(t, os.WriteFile(path, []byte(dumpJSON), 0o600)).Required()

	ch, err := slackexport.ReadFile(context.Background(), path, "")
	gt.NoError(t, err).Required()
	gt.Array(t, ch.Messages).Length(2)

	_, err = slackexport.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), "")
	gt.Value(t, err).NotNil()
}
