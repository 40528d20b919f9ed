package llm

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("OSPP Summer\n开源之夏 2025 报名开始")
	if !strings.Contains(prompt, "OSPP Summer") {
		t.Error("prompt should contain the input text")
	}
	if !strings.Contains(prompt, "ospp summer-yyyy") {
		t.Error("prompt should contain the lower-cased activity hint")
	}
	for _, key := range []string{"title", "description", "category", "tags", "events", "timeline", "deadline"} {
		if !strings.Contains(prompt, key) {
			t.Errorf("prompt should mention %q", key)
		}
	}
}

func TestBuildPromptTruncates(t *testing.T) {
	text := strings.Repeat("字", promptTextLimit+500)
	prompt := BuildPrompt(text)
	if strings.Contains(prompt, strings.Repeat("字", promptTextLimit+1)) {
		t.Error("prompt text was not truncated")
	}
	if !utf8.ValidString(prompt) {
		t.Error("truncation split a character")
	}
}

func TestActivityHint(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"\nab\nRust Meetup\nmore", "Rust Meetup"},
		{"", "activity"},
		{"x\ny", "activity"},
		{strings.Repeat("a", 120), "activity"},
	}
	for _, tt := range tests {
		if got := activityHint(tt.text); got != tt.want {
			t.Errorf("activityHint(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
