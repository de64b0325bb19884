package slack

import (
	"context"
)

// Service is the Slack API surface used to build the participant directory
type Service interface {
	// ListUsers retrieves every active human member of the workspace
	ListUsers(ctx context.Context) ([]*User, error)
}

// User is a workspace member as returned by users.list
type User struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
}
