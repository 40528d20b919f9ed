package patterns

import (
	"reflect"
	"testing"

	"github.com/pfrederiksen/activity-intake/internal/activity"
)

func TestExtractTimeInfo(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantDate     string
		wantTimeline []activity.TimelineEntry
	}{
		{
			name:     "cjk same-day range",
			text:     "开源之夏，地点：中国，上海，2025年6月4日 09:00-18:00",
			wantDate: "2025-06-04",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-06-04T09:00:00", Comment: CommentStart},
				{Deadline: "2025-06-04T18:00:00", Comment: CommentEnd},
			},
		},
		{
			name:     "cjk range with weekday",
			text:     "时间：2025年10月18日（周六）13:30~17:00",
			wantDate: "2025-10-18",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-10-18T13:30:00", Comment: CommentStart},
				{Deadline: "2025-10-18T17:00:00", Comment: CommentEnd},
			},
		},
		{
			name:     "numeric same-day range",
			text:     "Meetup on 2025-3-9 14:00 - 16:30 at the office",
			wantDate: "2025-03-09",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-03-09T14:00:00", Comment: CommentStart},
				{Deadline: "2025-03-09T16:30:00", Comment: CommentEnd},
			},
		},
		{
			name:     "iso range across days",
			text:     "Hackathon: 2025-11-01T09:00:00 - 2025-11-02T18:00:00",
			wantDate: "2025-11-01",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-11-01T09:00:00", Comment: CommentStart},
				{Deadline: "2025-11-02T18:00:00", Comment: CommentEnd},
			},
		},
		{
			name:     "fullwidth tilde range",
			text:     "2025年6月4日（周三）09:00～18:00",
			wantDate: "2025-06-04",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-06-04T09:00:00", Comment: CommentStart},
				{Deadline: "2025-06-04T18:00:00", Comment: CommentEnd},
			},
		},
		{
			name:     "iso range without seconds",
			text:     "Sprint: 2025-06-04T09:00 - 2025-06-05T18:00",
			wantDate: "2025-06-04",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-06-04T09:00:00", Comment: CommentStart},
				{Deadline: "2025-06-05T18:00:00", Comment: CommentEnd},
			},
		},
		{
			name:     "iso range with zones",
			text:     "Window: 2025-06-04T09:00:00Z - 2025-06-05T18:00:00+0800",
			wantDate: "2025-06-04",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-06-04T09:00:00Z", Comment: CommentStart},
				{Deadline: "2025-06-05T18:00:00+08:00", Comment: CommentEnd},
			},
		},
		{
			name:     "labelled start and end",
			text:     "报名开始：2025年5月1日，10:00\n报名结束：2025年5月20日 23:59",
			wantDate: "2025-05-01",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-05-01T10:00:00", Comment: CommentStart},
				{Deadline: "2025-05-20T23:59:00", Comment: CommentEnd},
			},
		},
		{
			name:     "latin labels",
			text:     "Start: 2025年7月1日 08:00\nEnd: 2025年7月3日 17:00",
			wantDate: "2025-07-01",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-07-01T08:00:00", Comment: CommentStart},
				{Deadline: "2025-07-03T17:00:00", Comment: CommentEnd},
			},
		},
		{
			name:     "bare cjk date",
			text:     "截止日期为2025年9月30日，请尽快报名",
			wantDate: "2025-09-30",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-09-30T00:00:00", Comment: CommentKeyDate},
			},
		},
		{
			name:     "bare numeric date",
			text:     "Deadline 2025-12-01, see website",
			wantDate: "2025-12-01",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2025-12-01T00:00:00", Comment: CommentKeyDate},
			},
		},
		{
			name:     "time label date",
			text:     "time: 2026-01-15T",
			wantDate: "2026-01-15",
			wantTimeline: []activity.TimelineEntry{
				{Deadline: "2026-01-15T00:00:00", Comment: CommentKeyDate},
			},
		},
		{
			name:         "nothing to find",
			text:         "欢迎参加本次开源社区活动",
			wantDate:     "",
			wantTimeline: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, timeline := ExtractTimeInfo(tt.text)
			if date != tt.wantDate {
				t.Errorf("date = %q, expected %q", date, tt.wantDate)
			}
			if !reflect.DeepEqual(timeline, tt.wantTimeline) {
				t.Errorf("timeline = %+v, expected %+v", timeline, tt.wantTimeline)
			}
		})
	}
}

func TestExtractTimeInfoOnlyOneLabel(t *testing.T) {
	// A lone start label is not enough for the labelled pattern, so the
	// bare date rule answers.
	date, timeline := ExtractTimeInfo("开始：2025年5月1日 10:00")
	if date != "2025-05-01" {
		t.Fatalf("date = %q, expected 2025-05-01", date)
	}
	if len(timeline) != 1 || timeline[0].Comment != CommentKeyDate {
		t.Errorf("expected a single key date entry, got %+v", timeline)
	}
}

func TestExtractTimeInfoInvalidFallsThrough(t *testing.T) {
	// Hour 25 is impossible, so the range pattern is skipped and the bare
	// date rule answers instead.
	date, timeline := ExtractTimeInfo("2025年6月4日 25:00-26:00")
	if date != "2025-06-04" {
		t.Fatalf("date = %q, expected 2025-06-04", date)
	}
	if len(timeline) != 1 || timeline[0].Comment != CommentKeyDate {
		t.Errorf("expected a single key date entry, got %+v", timeline)
	}
}

func TestExtractTimeInfoSkipsDateFollowedByTime(t *testing.T) {
	// The first date is directly followed by 'T' so it is not a bare date;
	// the second one is.
	date, timeline := ExtractTimeInfo("see 2025-01-02T10 or 2025-02-03 later")
	if date != "2025-02-03" {
		t.Errorf("date = %q, expected 2025-02-03", date)
	}
	if len(timeline) != 1 {
		t.Errorf("expected 1 entry, got %d", len(timeline))
	}
}

func TestExtractTimeInfoImpossibleBareDate(t *testing.T) {
	date, timeline := ExtractTimeInfo("2025年13月40日")
	if date != "" || timeline != nil {
		t.Errorf("expected no result for impossible date, got %q %+v", date, timeline)
	}
}
