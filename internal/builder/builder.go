package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/patterns"
	"github.com/pfrederiksen/activity-intake/internal/reconcile"
)

// DefaultTimezone is used when neither the LLM nor the config names one
const DefaultTimezone = "Asia/Shanghai"

// IDStrategy selects how event IDs are generated
type IDStrategy string

const (
	// IDSlug derives a readable ID from the title, falling back to IDHash
	// when the title has no ASCII letters or digits
	IDSlug IDStrategy = "slug"
	// IDHash uses 8 hex characters of the title's MD5 digest
	IDHash IDStrategy = "hash"
)

// ParseIDStrategy validates a strategy name
func ParseIDStrategy(s string) (IDStrategy, error) {
	switch IDStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case IDSlug, "":
		return IDSlug, nil
	case IDHash:
		return IDHash, nil
	default:
		return "", fmt.Errorf("unknown id strategy %q (must be 'slug' or 'hash')", s)
	}
}

// Builder turns reconciled fields into records
type Builder struct {
	IDStrategy      IDStrategy
	DefaultTimezone string
	Now             func() time.Time
}

// New creates a builder with slug IDs, the default timezone and the wall clock
func New() *Builder {
	return &Builder{
		IDStrategy:      IDSlug,
		DefaultTimezone: DefaultTimezone,
		Now:             time.Now,
	}
}

// Build creates a new record with a single event from f
func (b *Builder) Build(f reconcile.Fields) *activity.Record {
	title := strings.TrimSpace(f.Title)

	year := f.Year
	if year <= 0 {
		year = b.now().Year()
	}

	tz := strings.TrimSpace(f.Timezone)
	if tz == "" {
		tz = b.DefaultTimezone
	}
	if tz == "" {
		tz = DefaultTimezone
	}

	timeline := make([]activity.TimelineEntry, len(f.Timeline))
	copy(timeline, f.Timeline)

	return &activity.Record{
		Title:       title,
		Description: strings.TrimSpace(f.Description),
		Category:    activity.ParseCategory(string(f.Category)),
		Tags:        NormalizeTags(f.Tags),
		Events: []activity.Event{{
			Year:     year,
			ID:       b.GenerateID(title),
			Link:     strings.TrimSpace(f.Link),
			Timeline: timeline,
			Timezone: tz,
			Date:     strings.TrimSpace(f.Date),
			Place:    strings.TrimSpace(f.Place),
		}},
	}
}

// GenerateID returns the event ID for title under the builder's strategy
func (b *Builder) GenerateID(title string) string {
	if b.IDStrategy == IDHash {
		return activity.HashID(title)
	}
	if id := activity.SlugID(title); id != "" {
		return id
	}
	return activity.HashID(title)
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// NormalizeTags trims tags, drops empties and duplicates (first occurrence
// wins) and keeps at most five.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, patterns.MaxTags)
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == patterns.MaxTags {
			break
		}
	}
	return out
}
