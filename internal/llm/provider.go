package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrNoProvider is returned when no credentials are available for the
// configured provider.
var ErrNoProvider = errors.New("llm provider not configured")

// Provider is the interface for LLM completions.
type Provider interface {
	// Complete sends a prompt and returns the response text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Name returns provider/model, e.g. "github/gpt-4o".
	Name() string
}

// Provider names
const (
	ProviderGitHub = "github"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

const (
	githubModelsBaseURL = "https://models.inference.ai.azure.com"
	openAIBaseURL       = "https://api.openai.com/v1"

	DefaultTimeout     = 30 * time.Second
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 2000
	DefaultMaxRetries  = 3
)

// Config holds provider configuration.
type Config struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"-"`
	BaseURL       string        `yaml:"base_url"`
	Temperature   float32       `yaml:"temperature"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// NewProvider creates an LLM provider from the given config. Missing
// credentials yield ErrNoProvider so callers can fall back to rules.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGitHub, "":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("GITHUB_TOKEN")
		}
		if key == "" {
			return nil, fmt.Errorf("github provider requires GITHUB_TOKEN: %w", ErrNoProvider)
		}
		if cfg.Model == "" {
			cfg.Model = "gpt-4o"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = githubModelsBaseURL
		}
		cfg.Provider = ProviderGitHub
		cfg.APIKey = key
		return newOpenAIProvider(cfg), nil

	case ProviderOpenAI:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY: %w", ErrNoProvider)
		}
		if cfg.Model == "" {
			cfg.Model = "gpt-4-turbo-preview"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = openAIBaseURL
		}
		cfg.Provider = ProviderOpenAI
		cfg.APIKey = key
		return newOpenAIProvider(cfg), nil

	case ProviderNone:
		return nil, fmt.Errorf("llm disabled: %w", ErrNoProvider)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: github, openai, none)", cfg.Provider)
	}
}

// ParseLLMFlag parses a --llm flag value of the form "provider/model" or
// just "provider".
func ParseLLMFlag(flag string) (provider, model string, err error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return "", "", fmt.Errorf("empty --llm value")
	}
	parts := strings.SplitN(flag, "/", 2)
	provider = strings.ToLower(parts[0])
	if len(parts) == 2 {
		model = parts[1]
	}
	switch provider {
	case ProviderGitHub, ProviderOpenAI, ProviderNone:
		return provider, model, nil
	default:
		return "", "", fmt.Errorf("unknown provider %q in --llm flag (supported: github, openai, none)", provider)
	}
}
