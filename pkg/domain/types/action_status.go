package types

import (
	"fmt"
	"strings"
)

// ActionStatus represents the lifecycle state of an extracted action item
type ActionStatus string

const (
	ActionStatusOpen      ActionStatus = "open"
	ActionStatusCompleted ActionStatus = "completed"
	ActionStatusUnknown   ActionStatus = "unknown"
)

// AllActionStatuses returns all valid action statuses
func AllActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusOpen,
		ActionStatusCompleted,
		ActionStatusUnknown,
	}
}

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusOpen,
		ActionStatusCompleted,
		ActionStatusUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into an ActionStatus. Matching is case-insensitive.
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}
