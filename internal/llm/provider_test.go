package llm

import (
	"errors"
	"testing"
)

func TestNewProviderRequiresCredentials(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")

	for _, name := range []string{"github", "", "openai", "none"} {
		_, err := NewProvider(Config{Provider: name})
		if !errors.Is(err, ErrNoProvider) {
			t.Errorf("NewProvider(%q) error = %v, want ErrNoProvider", name, err)
		}
	}
}

func TestNewProviderDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	p, err := NewProvider(Config{Provider: "github"})
	if err != nil {
		t.Fatalf("NewProvider(github) error = %v", err)
	}
	if p.Name() != "github/gpt-4o" {
		t.Errorf("Name() = %q, want github/gpt-4o", p.Name())
	}

	p, err = NewProvider(Config{Provider: "OpenAI", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewProvider(openai) error = %v", err)
	}
	if p.Name() != "openai/gpt-4o-mini" {
		t.Errorf("Name() = %q, want openai/gpt-4o-mini", p.Name())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "gemini", APIKey: "k"})
	if err == nil || errors.Is(err, ErrNoProvider) {
		t.Errorf("expected an unknown provider error, got %v", err)
	}
}

func TestParseLLMFlag(t *testing.T) {
	tests := []struct {
		flag      string
		provider  string
		model     string
		expectErr bool
	}{
		{"github/gpt-4o", "github", "gpt-4o", false},
		{"OpenAI/gpt-4-turbo-preview", "openai", "gpt-4-turbo-preview", false},
		{"none", "none", "", false},
		{"azure/gpt-4o", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			provider, model, err := ParseLLMFlag(tt.flag)
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.flag)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider != tt.provider || model != tt.model {
				t.Errorf("got %q/%q, want %q/%q", provider, model, tt.provider, tt.model)
			}
		})
	}
}
