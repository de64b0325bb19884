package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// slackbotID is the built-in bot, which users.list does not flag as a bot
const slackbotID = "USLACKBOT"

type client struct {
	api    *slack.Client
	apiURL string
}

type Option func(*client)

// WithAPIURL points the client at another Slack API endpoint (must end with "/")
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiURL = url
	}
}

// New creates a Slack service for a bot token with the users:read scope
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{}
	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// ListUsers pages through users.list and drops deleted accounts and bots
func (c *client) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}

	result := make([]*User, 0, len(users))
	for i := range users {
		u := &users[i]
		if u.Deleted || u.IsBot || u.ID == slackbotID {
			continue
		}
		result = append(result, &User{
			ID:          u.ID,
			Name:        u.Name,
			RealName:    u.RealName,
			DisplayName: u.Profile.DisplayName,
		})
	}

	return result, nil
}
