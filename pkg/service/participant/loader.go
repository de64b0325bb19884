package participant

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/model"
	"github.com/secmon-lab/tasklens/pkg/utils/safe"
)

var userIDPattern = regexp.MustCompile(`^[UW][A-Z0-9]{6,}$`)

type jsonUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RealName    string `json:"real_name"`
	DisplayName string `json:"display_name"`
	Profile     *struct {
		RealName    string `json:"real_name"`
		DisplayName string `json:"display_name"`
	} `json:"profile,omitempty"`
}

// LoadFile reads a users list. Files ending in .json are a JSON array of users;
// anything else is treated as the whitespace separated text listing.
func LoadFile(ctx context.Context, path string) ([]*model.Participant, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open users file", goerr.V(model.PathKey, path))
	}
	defer safe.Close(ctx, f)

	now := time.Now()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(f, now)
	}
	return ParseText(f, now)
}

// ParseJSON reads a JSON array of {id, name, real_name, display_name} objects. A Slack
// users.list style profile object is also understood.
func ParseJSON(r io.Reader, now time.Time) ([]*model.Participant, error) {
	var users []jsonUser
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, goerr.Wrap(err, "failed to decode users JSON")
	}

	out := make([]*model.Participant, 0, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		p := &model.Participant{
			ID:          u.ID,
			Name:        u.Name,
			RealName:    u.RealName,
			DisplayName: u.DisplayName,
			UpdatedAt:   now,
		}
		if u.Profile != nil {
			if p.RealName == "" {
				p.RealName = u.Profile.RealName
			}
			if p.DisplayName == "" {
				p.DisplayName = u.Profile.DisplayName
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseText reads the text listing produced by slackdump. The first line is a header.
// On each row the first token shaped like a user ID is the ID and the tokens before it
// form the name; trailing columns are ignored.
func ParseText(r io.Reader, now time.Time) ([]*model.Participant, error) {
	var out []*model.Participant
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}

		fields := strings.Fields(scanner.Text())
		idx := -1
		for i, f := range fields {
			if userIDPattern.MatchString(f) {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		out = append(out, &model.Participant{
			ID:        fields[idx],
			RealName:  strings.Join(fields[:idx], " "),
			UpdatedAt: now,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read users file")
	}
	return out, nil
}
