package llm

import (
	"errors"
	"testing"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantTitle string
		wantTags  []string
		wantYear  int
	}{
		{
			name:      "plain object",
			response:  `{"title": "开源之夏", "category": "competition", "tags": ["开源"], "events": [{"year": 2025}]}`,
			wantTitle: "开源之夏",
			wantTags:  []string{"开源"},
			wantYear:  2025,
		},
		{
			name:      "json fence with prose",
			response:  "Here you go:\n```json\n{\"title\": \"RustConf\", \"tags\": [\"rust\"], \"events\": [{\"year\": \"2026\"}]}\n```\nDone.",
			wantTitle: "RustConf",
			wantTags:  []string{"rust"},
			wantYear:  2026,
		},
		{
			name:      "bare fence",
			response:  "```\n{\"title\": \"GopherChina\"}\n```",
			wantTitle: "GopherChina",
		},
		{
			name: "comments and trailing commas",
			response: `{
  "title": "KubeCon", // official name
  "link": "https://events.linuxfoundation.org", // url with slashes stays
  "tags": ["cloud", "k8s",],
}`,
			wantTitle: "KubeCon",
			wantTags:  []string{"cloud", "k8s"},
		},
		{
			name:      "tags as a single string",
			response:  `{"title": "PyCon", "tags": "python， 会议, community"}`,
			wantTitle: "PyCon",
			wantTags:  []string{"python", "会议", "community"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFields(tt.response)
			if err != nil {
				t.Fatalf("ParseFields() error = %v", err)
			}
			if f.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", f.Title, tt.wantTitle)
			}
			if len(f.Tags) != len(tt.wantTags) {
				t.Fatalf("Tags = %v, want %v", f.Tags, tt.wantTags)
			}
			for i := range tt.wantTags {
				if f.Tags[i] != tt.wantTags[i] {
					t.Errorf("Tags[%d] = %q, want %q", i, f.Tags[i], tt.wantTags[i])
				}
			}
			if tt.wantYear != 0 {
				ev := f.FirstEvent()
				if ev == nil || int(ev.Year) != tt.wantYear {
					t.Errorf("first event year = %v, want %d", ev, tt.wantYear)
				}
			}
		})
	}
}

func TestParseFieldsErrors(t *testing.T) {
	if _, err := ParseFields("I could not find an activity."); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
	if _, err := ParseFields(""); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON for empty response, got %v", err)
	}
	if _, err := ParseFields(`{"title": "x", "events": "soon"}`); err == nil {
		t.Error("expected a decode error for malformed events")
	}
}

func TestFlexIntIgnoresGarbage(t *testing.T) {
	f, err := ParseFields(`{"events": [{"year": "next year"}, {"year": 2025.0}, {"year": null}]}`)
	if err != nil {
		t.Fatalf("ParseFields() error = %v", err)
	}
	if f.Events[0].Year != 0 || f.Events[1].Year != 2025 || f.Events[2].Year != 0 {
		t.Errorf("unexpected years %v %v %v", f.Events[0].Year, f.Events[1].Year, f.Events[2].Year)
	}
}

func TestFirstEventNil(t *testing.T) {
	var f *Fields
	if f.FirstEvent() != nil {
		t.Error("nil fields should have no first event")
	}
	if (&Fields{}).FirstEvent() != nil {
		t.Error("fields without events should have no first event")
	}
}
