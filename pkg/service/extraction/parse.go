package extraction

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/secmon-lab/tasklens/pkg/domain/model"
)

// ParseRecords reads line-delimited JSON records out of free text. Commentary and code
// fences are ignored. A bare JSON array is also accepted. Records that fail to decode or
// lack a task are counted in dropped. unparsable is set when non-empty text holds no record.
func ParseRecords(text string) (candidates []*model.Candidate, dropped int, unparsable bool) {
	body := stripFences(text)
	if strings.TrimSpace(body) == "" {
		return nil, 0, false
	}

	if elems, ok := decodeArray(body); ok {
		for _, raw := range elems {
			if c, ok := decodeRecord(raw); ok {
				candidates = append(candidates, c)
			} else {
				dropped++
			}
		}
		return candidates, dropped, false
	}

	found := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		line = strings.TrimSuffix(line, ",")
		if !strings.HasPrefix(line, "{") {
			continue
		}
		found = true
		if c, ok := decodeRecord([]byte(line)); ok {
			candidates = append(candidates, c)
		} else {
			dropped++
		}
	}

	return candidates, dropped, !found
}

func stripFences(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func decodeArray(body string) ([]json.RawMessage, bool) {
	start := strings.Index(body, "[")
	end := strings.LastIndex(body, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	if strings.TrimSpace(body[:start]) != "" && strings.Contains(body[:start], "{") {
		return nil, false
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(body[start:end+1]), &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func decodeRecord(raw []byte) (*model.Candidate, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}

	var c model.Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false
	}
	if err := c.Validate(); err != nil {
		return nil, false
	}
	return &c, true
}
