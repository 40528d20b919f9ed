package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/activity-intake/internal/activity"
)

// Fields is the field dictionary an LLM returns for one activity
type Fields struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Tags        StringList    `json:"tags"`
	Events      []EventFields `json:"events"`
}

// EventFields is one event as described by the LLM
type EventFields struct {
	Year     FlexInt                  `json:"year"`
	ID       string                   `json:"id"`
	Link     string                   `json:"link"`
	Timezone string                   `json:"timezone"`
	Date     string                   `json:"date"`
	Place    string                   `json:"place"`
	Timeline []activity.TimelineEntry `json:"timeline"`
}

// FirstEvent returns the first described event, or nil
func (f *Fields) FirstEvent() *EventFields {
	if f == nil || len(f.Events) == 0 {
		return nil
	}
	return &f.Events[0]
}

// FlexInt decodes a JSON number or a numeric string. Anything else decodes
// to zero rather than failing the whole answer.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	if v, err := strconv.Atoi(string(data)); err == nil {
		*n = FlexInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		*n = FlexInt(int(f))
		return nil
	}
	*n = 0
	return nil
}

// StringList decodes either a JSON array of strings or a single
// comma-separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var out []string
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '，' || r == '、' }) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*l = arr
	return nil
}
