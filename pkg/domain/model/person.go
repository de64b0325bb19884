package model

import "strings"

// Person is a configured name with aliases that refer to the same human
type Person struct {
	Name    string
	Aliases []string
}

// Names returns the name followed by its aliases, without blanks
func (p Person) Names() []string {
	out := make([]string, 0, len(p.Aliases)+1)
	for _, n := range append([]string{p.Name}, p.Aliases...) {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Matches reports whether name equals the name or one of the aliases, ignoring case
func (p Person) Matches(name string) bool {
	name = strings.TrimSpace(name)
	for _, n := range p.Names() {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
