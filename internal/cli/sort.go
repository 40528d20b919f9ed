package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/activity"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone     SortOrder = "none"
	SortByDate   SortOrder = "date"
	SortByTitle  SortOrder = "title"
	SortCategory SortOrder = "category"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "", SortNone:
		return SortNone, nil
	case SortByDate, SortByTitle, SortCategory:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be none, date, title or category)", s)
	}
}

// sortRecords sorts records in place. The sort is stable so records that
// compare equal keep their file order.
func sortRecords(records []*activity.Record, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(records, func(i, j int) bool {
			return compareByDate(records[i], records[j])
		})
	case SortByTitle:
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].Title) < strings.ToLower(records[j].Title)
		})
	case SortCategory:
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Category != records[j].Category {
				return records[i].Category < records[j].Category
			}
			return strings.ToLower(records[i].Title) < strings.ToLower(records[j].Title)
		})
	}
}

// compareByDate orders by earliest timeline deadline. Records without a
// parseable deadline sort last.
func compareByDate(a, b *activity.Record) bool {
	da, okA := earliestDeadline(a)
	db, okB := earliestDeadline(b)

	if !okA && !okB {
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	}
	if !okA {
		return false
	}
	if !okB {
		return true
	}
	return da.Before(db)
}

func earliestDeadline(r *activity.Record) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, e := range r.Events {
		for _, t := range e.Timeline {
			d, err := activity.ParseDeadline(t.Deadline)
			if err != nil {
				continue
			}
			if !found || d.Before(earliest) {
				earliest = d
				found = true
			}
		}
	}
	return earliest, found
}
