package participant

import (
	"sort"
	"strings"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// Directory is an immutable identifier to display-name snapshot. A nil Directory is
// valid and resolves every identifier to itself.
type Directory struct {
	names map[string]string
}

// NewDirectory builds a snapshot from participants. Later entries win on duplicate IDs
// and participants without any name are left out.
func NewDirectory(participants []*model.Participant) *Directory {
	d := &Directory{names: make(map[string]string, len(participants))}
	for _, p := range participants {
		if p == nil || p.ID == "" {
			continue
		}
		if name := p.BestName(); name != p.ID {
			d.names[p.ID] = name
		}
	}
	return d
}

// Lookup returns the display name for id, or id itself when unknown
func (d *Directory) Lookup(id string) string {
	if d == nil {
		return id
	}
	if name, ok := d.names[id]; ok && name != "" {
		return name
	}
	return id
}

// Resolve returns the display name and whether id was known
func (d *Directory) Resolve(id string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[id]
	return name, ok && name != ""
}

// Len returns the number of known participants
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Names returns the distinct display names, sorted
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(d.names))
	out := make([]string, 0, len(d.names))
	for _, name := range d.names {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DisplayNames returns a copy of the identifier to display-name map
func (d *Directory) DisplayNames() map[string]string {
	out := make(map[string]string)
	if d == nil {
		return out
	}
	for id, name := range d.names {
		out[id] = name
	}
	return out
}
