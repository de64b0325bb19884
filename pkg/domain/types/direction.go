package types

import "fmt"

// Direction is the order in which the batch planner walks the message archive
type Direction string

const (
	DirectionNewestFirst Direction = "newest-first"
	DirectionOldestFirst Direction = "oldest-first"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionNewestFirst || d == DirectionOldestFirst
}

func (d Direction) String() string {
	return string(d)
}

// ParseDirection parses a string into a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid direction: %s", s)
	}
	return d, nil
}
