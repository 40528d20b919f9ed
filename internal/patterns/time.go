package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/activity-intake/internal/activity"
)

// Timeline comments emitted by the extractors
const (
	CommentStart   = "活动开始"
	CommentEnd     = "活动结束"
	CommentKeyDate = "关键日期"
)

// isoStamp is an ISO-8601 timestamp with optional seconds and zone: 7 groups
const isoStamp = `(\d{4})-(\d{1,2})-(\d{1,2})T(\d{1,2}):(\d{2})(?::(\d{2}))?(Z|[+-]\d{2}:?\d{2})?`

const rangeDash = `\s*[-~～–—至]\s*`

var (
	// Same-day ranges: date followed by HH:MM - HH:MM
	sameDayRangePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日(?:[（(][^）)]*[）)])?\s*(\d{1,2})[:：](\d{2})` + rangeDash + `(\d{1,2})[:：](\d{2})`),
		regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})[T\s]+(\d{1,2}):(\d{2})` + rangeDash + `(\d{1,2}):(\d{2})`),
		regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日\s+(\d{1,2})[:：](\d{2})` + rangeDash + `(\d{1,2})[:：](\d{2})`),
	}

	isoRangePattern = regexp.MustCompile(isoStamp + rangeDash + isoStamp)

	labelledStartPattern = regexp.MustCompile(`(?i)(?:开始|start)[：:]\s*(\d{4})年(\d{1,2})月(\d{1,2})日[，,\s]+(\d{1,2})[:：](\d{2})`)
	labelledEndPattern   = regexp.MustCompile(`(?i)(?:结束|end)[：:]\s*(\d{4})年(\d{1,2})月(\d{1,2})日[，,\s]+(\d{1,2})[:：](\d{2})`)
)

// bareDatePattern matches a date with no time of day. notFollowedBy lists the
// characters that must not come right after the match.
type bareDatePattern struct {
	re            *regexp.Regexp
	notFollowedBy string
}

var bareDatePatterns = []bareDatePattern{
	{regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`), "0123456789:"},
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), "T0123456789:"},
	{regexp.MustCompile(`(?i)time[：:]\s*(\d{4})-(\d{1,2})-(\d{1,2})`), ""},
}

// ExtractTimeInfo finds the activity date and timeline in text. Pattern
// groups are tried in priority order and the first valid match wins:
// same-day time ranges, ISO timestamp ranges, labelled start/end pairs,
// then a bare date. It returns ("", nil) when nothing matches.
func ExtractTimeInfo(text string) (string, []activity.TimelineEntry) {
	for _, re := range sameDayRangePatterns {
		if date, timeline, ok := matchSameDayRange(re, text); ok {
			return date, timeline
		}
	}

	if date, timeline, ok := matchISORange(text); ok {
		return date, timeline
	}

	if date, timeline, ok := matchLabelledRange(text); ok {
		return date, timeline
	}

	for _, p := range bareDatePatterns {
		if date, timeline, ok := matchBareDate(p, text); ok {
			return date, timeline
		}
	}

	return "", nil
}

func matchSameDayRange(re *regexp.Regexp, text string) (string, []activity.TimelineEntry, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", nil, false
	}
	n, ok := atoiAll(m[1:])
	if !ok {
		return "", nil, false
	}
	year, month, day, h1, m1, h2, m2 := n[0], n[1], n[2], n[3], n[4], n[5], n[6]
	if !activity.ValidDateTime(year, month, day, h1, m1, 0) || !activity.ValidDateTime(year, month, day, h2, m2, 0) {
		return "", nil, false
	}

	return activity.FormatDate(year, month, day), []activity.TimelineEntry{
		{Deadline: activity.FormatDeadline(year, month, day, h1, m1, 0), Comment: CommentStart},
		{Deadline: activity.FormatDeadline(year, month, day, h2, m2, 0), Comment: CommentEnd},
	}, true
}

func matchISORange(text string) (string, []activity.TimelineEntry, bool) {
	m := isoRangePattern.FindStringSubmatch(text)
	if m == nil {
		return "", nil, false
	}
	start, date, ok := isoDeadline(m[1:8])
	if !ok {
		return "", nil, false
	}
	end, _, ok := isoDeadline(m[8:15])
	if !ok {
		return "", nil, false
	}

	return date, []activity.TimelineEntry{
		{Deadline: start, Comment: CommentStart},
		{Deadline: end, Comment: CommentEnd},
	}, true
}

// isoDeadline renders the groups of one isoStamp match as a deadline. A zone
// suffix is kept, normalized to ±hh:mm.
func isoDeadline(g []string) (deadline, date string, ok bool) {
	sec := g[5]
	if sec == "" {
		sec = "0"
	}
	n, ok := atoiAll([]string{g[0], g[1], g[2], g[3], g[4], sec})
	if !ok || !activity.ValidDateTime(n[0], n[1], n[2], n[3], n[4], n[5]) {
		return "", "", false
	}
	zone, ok := normalizeZone(g[6])
	if !ok {
		return "", "", false
	}
	return activity.FormatDeadline(n[0], n[1], n[2], n[3], n[4], n[5]) + zone, activity.FormatDate(n[0], n[1], n[2]), true
}

func normalizeZone(z string) (string, bool) {
	if z == "" || z == "Z" {
		return z, true
	}
	digits := strings.ReplaceAll(z[1:], ":", "")
	h, _ := strconv.Atoi(digits[:2])
	m, _ := strconv.Atoi(digits[2:])
	if h > 14 || m > 59 {
		return "", false
	}
	return z[:1] + digits[:2] + ":" + digits[2:], true
}

func matchLabelledRange(text string) (string, []activity.TimelineEntry, bool) {
	sm := labelledStartPattern.FindStringSubmatch(text)
	em := labelledEndPattern.FindStringSubmatch(text)
	if sm == nil || em == nil {
		return "", nil, false
	}
	s, ok := atoiAll(sm[1:])
	if !ok {
		return "", nil, false
	}
	e, ok := atoiAll(em[1:])
	if !ok {
		return "", nil, false
	}
	if !activity.ValidDateTime(s[0], s[1], s[2], s[3], s[4], 0) || !activity.ValidDateTime(e[0], e[1], e[2], e[3], e[4], 0) {
		return "", nil, false
	}

	return activity.FormatDate(s[0], s[1], s[2]), []activity.TimelineEntry{
		{Deadline: activity.FormatDeadline(s[0], s[1], s[2], s[3], s[4], 0), Comment: CommentStart},
		{Deadline: activity.FormatDeadline(e[0], e[1], e[2], e[3], e[4], 0), Comment: CommentEnd},
	}, true
}

// matchBareDate scans for the first match not followed by a forbidden
// character. A rejected match resumes the scan one byte after its start.
func matchBareDate(p bareDatePattern, text string) (string, []activity.TimelineEntry, bool) {
	offset := 0
	for offset < len(text) {
		loc := p.re.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			return "", nil, false
		}
		start, end := offset+loc[0], offset+loc[1]
		if end < len(text) && p.notFollowedBy != "" && strings.IndexByte(p.notFollowedBy, text[end]) >= 0 {
			offset = start + 1
			continue
		}

		groups := make([]string, 0, 3)
		for i := 2; i+1 < len(loc); i += 2 {
			groups = append(groups, text[offset+loc[i]:offset+loc[i+1]])
		}
		n, ok := atoiAll(groups)
		if !ok || !activity.ValidDateTime(n[0], n[1], n[2], 0, 0, 0) {
			return "", nil, false
		}
		return activity.FormatDate(n[0], n[1], n[2]), []activity.TimelineEntry{
			{Deadline: activity.FormatDeadline(n[0], n[1], n[2], 0, 0, 0), Comment: CommentKeyDate},
		}, true
	}
	return "", nil, false
}

func atoiAll(groups []string) ([]int, bool) {
	out := make([]int, len(groups))
	for i, g := range groups {
		v, err := strconv.Atoi(g)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
