package config

import (
	"log/slog"

	"github.com/secmon-lab/tasklens/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	botToken string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (users:read) for participant directory sync",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TASKLENS_SLACK_BOT_TOKEN"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
	)
}

// BotToken returns the Slack bot token
func (x *Slack) BotToken() string {
	return x.botToken
}

// IsConfigured checks if a bot token is available
func (x *Slack) IsConfigured() bool {
	return x.botToken != ""
}

// Configure creates the Slack API client, or nil when no bot token is set
func (x *Slack) Configure(opts ...slack.Option) (slack.Service, error) {
	if x.botToken == "" {
		return nil, nil
	}
	return slack.New(x.botToken, opts...)
}
