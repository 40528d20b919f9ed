package activity

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
	}{
		{"conference", CategoryConference},
		{"Competition", CategoryCompetition},
		{"  ACTIVITY ", CategoryActivity},
		{"workshop", CategoryActivity},
		{"", CategoryActivity},
		{"会议", CategoryActivity},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseCategory(tt.input); got != tt.expected {
				t.Errorf("ParseCategory(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if Category("meetup").Valid() {
		t.Error("expected unknown category to be invalid")
	}
	if Category("").Valid() {
		t.Error("expected empty category to be invalid")
	}
}

func TestCategoryCorpusFile(t *testing.T) {
	if got := CategoryConference.CorpusFile(); got != "conferences.yml" {
		t.Errorf("unexpected file %q", got)
	}
	if got := CategoryCompetition.CorpusFile(); got != "competitions.yml" {
		t.Errorf("unexpected file %q", got)
	}
	if got := CategoryActivity.CorpusFile(); got != "activities.yml" {
		t.Errorf("unexpected file %q", got)
	}
}

func sampleRecord() *Record {
	return &Record{
		Title:       "开源之夏",
		Description: "面向高校学生的开源活动",
		Category:    CategoryActivity,
		Tags:        []string{"开源", "校园"},
		Events: []Event{
			{
				Year:     2025,
				ID:       "osc-2025",
				Link:     "https://summer-ospp.ac.cn",
				Timezone: "Asia/Shanghai",
				Date:     "2025-06-04",
				Place:    "中国，上海",
				Timeline: []TimelineEntry{
					{Deadline: "2025-06-04T09:00:00", Comment: "活动开始"},
					{Deadline: "2025-06-04T18:00:00+08:00", Comment: "活动结束"},
				},
			},
		},
	}
}

func TestRecordJSONKeyOrder(t *testing.T) {
	data, err := json.Marshal(sampleRecord())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)

	order := []string{`"title"`, `"description"`, `"category"`, `"tags"`, `"events"`, `"year"`, `"id"`, `"link"`, `"timeline"`, `"timezone"`, `"date"`, `"place"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("key %s missing from %s", key, s)
		}
		if idx < last {
			t.Errorf("key %s out of order in %s", key, s)
		}
		last = idx
	}
}

func TestRecordYAMLPreservesDeadlines(t *testing.T) {
	rec := sampleRecord()
	data, err := yaml.Marshal([]*Record{rec})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back []*Record
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(back) != 1 {
		t.Fatalf("expected 1 record, got %d", len(back))
	}
	got := back[0].Events[0].Timeline
	if got[0].Deadline != "2025-06-04T09:00:00" || got[1].Deadline != "2025-06-04T18:00:00+08:00" {
		t.Errorf("deadlines changed in round trip: %+v", got)
	}
	if back[0].Events[0].Place != "中国，上海" {
		t.Errorf("place changed in round trip: %q", back[0].Events[0].Place)
	}
}

func TestRecordClone(t *testing.T) {
	rec := sampleRecord()
	clone := rec.Clone()
	clone.Tags[0] = "changed"
	clone.Events[0].Timeline[0].Comment = "changed"

	if rec.Tags[0] != "开源" {
		t.Error("clone shares tag storage with original")
	}
	if rec.Events[0].Timeline[0].Comment != "活动开始" {
		t.Error("clone shares timeline storage with original")
	}
}

func TestEventIDs(t *testing.T) {
	rec := sampleRecord()
	rec.Events = append(rec.Events, Event{ID: "osc-2026"})
	ids := rec.EventIDs()
	if len(ids) != 2 || ids[0] != "osc-2025" || ids[1] != "osc-2026" {
		t.Errorf("unexpected ids %v", ids)
	}
}
