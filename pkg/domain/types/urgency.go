package types

import (
	"fmt"
	"strings"
)

// Urgency represents how pressing an action item is
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// AllUrgencies returns all valid urgencies ordered from low to high
func AllUrgencies() []Urgency {
	return []Urgency{UrgencyLow, UrgencyNormal, UrgencyHigh}
}

// IsValid checks if the urgency is valid
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh:
		return true
	default:
		return false
	}
}

// Rank returns 0 for low, 1 for normal and 2 for high. Invalid values rank as normal.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 0
	case UrgencyHigh:
		return 2
	default:
		return 1
	}
}

func (u Urgency) String() string {
	return string(u)
}

// ParseUrgency parses a string into an Urgency. Matching is case-insensitive.
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", fmt.Errorf("invalid urgency: %s", s)
	}
	return u, nil
}
