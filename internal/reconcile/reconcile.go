package reconcile

import (
	"strconv"
	"strings"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/llm"
	"github.com/pfrederiksen/activity-intake/internal/patterns"
)

// DefaultTitle is used when no source provides a title
const DefaultTitle = "活动"

// Input is everything the engine reads. It is never modified.
type Input struct {
	Text      string
	SourceURL string
	LLM       *llm.Fields
}

// Fields is the reconciled field set handed to the record builder
type Fields struct {
	Title       string                   `json:"title" yaml:"title"`
	Description string                   `json:"description" yaml:"description"`
	Category    activity.Category        `json:"category" yaml:"category"`
	Tags        []string                 `json:"tags" yaml:"tags"`
	Year        int                      `json:"year,omitempty" yaml:"year,omitempty"`
	Timezone    string                   `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Date        string                   `json:"date" yaml:"date"`
	Place       string                   `json:"place" yaml:"place"`
	Link        string                   `json:"link" yaml:"link"`
	Timeline    []activity.TimelineEntry `json:"timeline" yaml:"timeline"`
	Sources     map[string]Source        `json:"sources" yaml:"sources"`
}

// Source names the origin of a reconciled value
type Source string

const (
	SourceLLM     Source = "llm"
	SourceRules   Source = "rules"
	SourceURL     Source = "source_url"
	SourceDefault Source = "default"
	SourceNone    Source = "none"
)

// candidate is one possible value for a field. ok reports whether the
// provider had anything to offer.
type candidate[T any] struct {
	source Source
	get    func() (T, bool)
}

// first returns the value of the first candidate that offers one
func first[T any](cands ...candidate[T]) (T, Source) {
	for _, c := range cands {
		if v, ok := c.get(); ok {
			return v, c.source
		}
	}
	var zero T
	return zero, SourceNone
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Reconcile merges the LLM fields in in.LLM with rule extraction over
// in.Text. It is deterministic: identical inputs give identical output.
func Reconcile(in Input) Fields {
	rules := extractRules(in.Text)
	ai := in.LLM
	ev := ai.FirstEvent()

	out := Fields{Sources: make(map[string]Source)}
	var src Source

	out.Title, src = first(
		candidate[string]{SourceLLM, func() (string, bool) { return llmString(ai, func(f *llm.Fields) string { return f.Title }) }},
		candidate[string]{SourceDefault, func() (string, bool) { return DefaultTitle, true }},
	)
	out.Sources["title"] = src

	out.Description, src = first(
		candidate[string]{SourceLLM, func() (string, bool) { return llmString(ai, func(f *llm.Fields) string { return f.Description }) }},
		candidate[string]{SourceRules, func() (string, bool) {
			if rules.description == patterns.DescriptionPlaceholder {
				return "", false
			}
			return nonEmpty(rules.description)
		}},
	)
	out.Sources["description"] = src

	out.Category, src = first(
		candidate[activity.Category]{SourceLLM, func() (activity.Category, bool) {
			s, ok := llmString(ai, func(f *llm.Fields) string { return f.Category })
			return activity.ParseCategory(s), ok
		}},
		candidate[activity.Category]{SourceDefault, func() (activity.Category, bool) { return activity.CategoryActivity, true }},
	)
	out.Sources["category"] = src

	out.Tags, src = first(
		candidate[[]string]{SourceLLM, func() ([]string, bool) {
			if ai == nil {
				return nil, false
			}
			tags := cleanTags(ai.Tags)
			return tags, len(tags) > 0
		}},
		candidate[[]string]{SourceRules, func() ([]string, bool) {
			tags := patterns.ExtractTags(out.Title, in.Text)
			return tags, len(tags) > 0
		}},
	)
	out.Sources["tags"] = src

	out.Timeline, src = chooseTimeline(rules.timeline, ev)
	out.Sources["timeline"] = src

	out.Date, out.Sources["date"] = ruleOnly(rules.date)
	out.Place, out.Sources["place"] = ruleOnly(rules.place)

	out.Link, src = first(
		candidate[string]{SourceURL, func() (string, bool) { return nonEmpty(in.SourceURL) }},
	)
	out.Sources["link"] = src

	out.Year, src = first(
		candidate[int]{SourceRules, func() (int, bool) { return yearOf(rules.date) }},
		candidate[int]{SourceLLM, func() (int, bool) {
			if ev == nil || ev.Year <= 0 {
				return 0, false
			}
			return int(ev.Year), true
		}},
	)
	out.Sources["year"] = src

	out.Timezone, src = first(
		candidate[string]{SourceLLM, func() (string, bool) {
			if ev == nil {
				return "", false
			}
			return nonEmpty(ev.Timezone)
		}},
	)
	out.Sources["timezone"] = src

	return out
}

type ruleFields struct {
	date        string
	timeline    []activity.TimelineEntry
	place       string
	description string
}

func extractRules(text string) ruleFields {
	date, timeline := patterns.ExtractTimeInfo(text)
	return ruleFields{
		date:        date,
		timeline:    timeline,
		place:       patterns.ExtractPlace(text),
		description: patterns.ExtractDescription(text),
	}
}

// chooseTimeline prefers the source with more entries; a tie or a missing
// LLM timeline keeps the rule timeline.
func chooseTimeline(rules []activity.TimelineEntry, ev *llm.EventFields) ([]activity.TimelineEntry, Source) {
	var fromLLM []activity.TimelineEntry
	if ev != nil {
		fromLLM = ev.Timeline
	}
	switch {
	case len(fromLLM) > len(rules):
		return cloneTimeline(fromLLM), SourceLLM
	case len(rules) > 0:
		return cloneTimeline(rules), SourceRules
	default:
		return nil, SourceNone
	}
}

func ruleOnly(v string) (string, Source) {
	if v == "" {
		return "", SourceNone
	}
	return v, SourceRules
}

func llmString(f *llm.Fields, get func(*llm.Fields) string) (string, bool) {
	if f == nil {
		return "", false
	}
	return nonEmpty(get(f))
}

func yearOf(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func cloneTimeline(in []activity.TimelineEntry) []activity.TimelineEntry {
	return append([]activity.TimelineEntry(nil), in...)
}
