package activity

import (
	"strings"
)

// Category classifies an activity record
type Category string

const (
	CategoryConference  Category = "conference"
	CategoryCompetition Category = "competition"
	CategoryActivity    Category = "activity"
)

// Categories lists the known categories in corpus file order
var Categories = []Category{CategoryActivity, CategoryCompetition, CategoryConference}

// ParseCategory coerces an arbitrary string into a Category.
// Unknown or empty values become CategoryActivity; it never fails.
func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryConference, CategoryCompetition, CategoryActivity:
		return c
	default:
		return CategoryActivity
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryConference, CategoryCompetition, CategoryActivity:
		return true
	}
	return false
}

// CorpusFile returns the corpus file name holding records of this category
func (c Category) CorpusFile() string {
	switch c {
	case CategoryConference:
		return "conferences.yml"
	case CategoryCompetition:
		return "competitions.yml"
	default:
		return "activities.yml"
	}
}

// TimelineEntry is a single dated milestone of an event
type TimelineEntry struct {
	Deadline string `json:"deadline" yaml:"deadline"`
	Comment  string `json:"comment" yaml:"comment"`
}

// Event is one dated occurrence of an activity
type Event struct {
	Year     int             `json:"year" yaml:"year"`
	ID       string          `json:"id" yaml:"id"`
	Link     string          `json:"link" yaml:"link"`
	Timeline []TimelineEntry `json:"timeline" yaml:"timeline"`
	Timezone string          `json:"timezone" yaml:"timezone"`
	Date     string          `json:"date" yaml:"date"`
	Place    string          `json:"place" yaml:"place"`
}

// Record is a complete activity as stored in the corpus
type Record struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Category    Category `json:"category" yaml:"category"`
	Tags        []string `json:"tags" yaml:"tags"`
	Events      []Event  `json:"events" yaml:"events"`
}

// EventIDs returns the IDs of all events in the record, in order
func (r *Record) EventIDs() []string {
	ids := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		ids = append(ids, e.ID)
	}
	return ids
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	out := *r
	out.Tags = append([]string(nil), r.Tags...)
	out.Events = make([]Event, len(r.Events))
	for i, e := range r.Events {
		e.Timeline = append([]TimelineEntry(nil), e.Timeline...)
		out.Events[i] = e
	}
	return &out
}
