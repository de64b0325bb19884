package model

import "time"

// Participant is a chat workspace member known to the participant directory
type Participant struct {
	ID          string
	Name        string // account name, e.g. "itzaferg"
	RealName    string
	DisplayName string
	UpdatedAt   time.Time
}

// BestName picks the most human friendly name available, falling back to the ID
func (p *Participant) BestName() string {
	for _, n := range []string{p.DisplayName, p.RealName, p.Name} {
		if n != "" {
			return n
		}
	}
	return p.ID
}

// ParticipantMetadata tracks participant directory synchronization
type ParticipantMetadata struct {
	LastRefreshSuccess time.Time `json:"last_refresh_success"`
	LastRefreshAttempt time.Time `json:"last_refresh_attempt"`
	Count              int       `json:"count"`
	Source             string    `json:"source"` // "slack" or a users file path
}
