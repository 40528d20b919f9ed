package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/dustin/go-humanize"
	"github.com/pfrederiksen/activity-intake/internal/builder"
	"github.com/pfrederiksen/activity-intake/internal/llm"
	"github.com/pfrederiksen/activity-intake/internal/notifier"
	"github.com/pfrederiksen/activity-intake/internal/source"
	"github.com/pfrederiksen/activity-intake/internal/validate"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv
const (
	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvOpenAIBase   = "OPENAI_API_BASE"
	EnvProvider     = "ACTIVITY_INTAKE_PROVIDER"
	EnvModel        = "ACTIVITY_INTAKE_MODEL"
	EnvDataDir      = "ACTIVITY_INTAKE_DATA_DIR"
	EnvLogLevel     = "ACTIVITY_INTAKE_LOG_LEVEL"
	EnvNotifyRepo   = "ACTIVITY_INTAKE_REPO"
	EnvNotifyIssue  = "ACTIVITY_INTAKE_ISSUE"
	DefaultDataDir  = "./data"
	DefaultFileSize = "50MiB"
)

// SourceConfig configures input extraction. MaxFileSize is a human-readable
// size such as "50MiB".
type SourceConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxFileSize   string        `yaml:"max_file_size"`
	MaxTextLength int           `yaml:"max_text_length"`
	MaxImages     int           `yaml:"max_images"`
	EnableOCR     bool          `yaml:"enable_ocr"`
	EnableQR      bool          `yaml:"enable_qr"`
	OCRCommand    string        `yaml:"ocr_command"`
	OCRLanguages  string        `yaml:"ocr_languages"`
}

// ValidationConfig configures the validator
type ValidationConfig struct {
	DescriptionMaxLength int           `yaml:"description_max_length"`
	Timezones            []string      `yaml:"timezones"`
	CheckLinks           bool          `yaml:"check_links"`
	LinkTimeout          time.Duration `yaml:"link_timeout"`
	SimilarityThreshold  float64       `yaml:"similarity_threshold"`
}

// BuilderConfig configures record building
type BuilderConfig struct {
	IDStrategy      string `yaml:"id_strategy"`
	DefaultTimezone string `yaml:"default_timezone"`
}

// NotifyConfig names the GitHub issue reports are published to
type NotifyConfig struct {
	Repo    string `yaml:"repo"`
	Issue   int    `yaml:"issue"`
	APIURL  string `yaml:"api_url"`
	Token   string `yaml:"-"`
	Enabled bool   `yaml:"enabled"`
}

// Config is the complete configuration of one run
type Config struct {
	DataDir     string           `yaml:"data_dir"`
	LogLevel    string           `yaml:"log_level"`
	Parallelism int              `yaml:"parallelism"`
	LLM         llm.Config       `yaml:"llm"`
	Source      SourceConfig     `yaml:"source"`
	Validation  ValidationConfig `yaml:"validation"`
	Builder     BuilderConfig    `yaml:"builder"`
	Notify      NotifyConfig     `yaml:"notify"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DataDir:     DefaultDataDir,
		LogLevel:    "info",
		Parallelism: 4,
		LLM: llm.Config{
			Provider:      llm.ProviderGitHub,
			Temperature:   llm.DefaultTemperature,
			MaxTokens:     llm.DefaultMaxTokens,
			Timeout:       llm.DefaultTimeout,
			MaxRetries:    llm.DefaultMaxRetries,
			RetryInterval: time.Second,
		},
		Source: SourceConfig{
			Timeout:       source.DefaultTimeout,
			MaxRetries:    source.DefaultMaxRetries,
			RetryInterval: 500 * time.Millisecond,
			MaxFileSize:   DefaultFileSize,
			MaxTextLength: source.DefaultMaxTextLength,
			MaxImages:     source.DefaultMaxImages,
			OCRCommand:    source.DefaultOCRCommand,
			OCRLanguages:  source.DefaultOCRLanguages,
		},
		Validation: ValidationConfig{
			DescriptionMaxLength: validate.DefaultDescriptionMaxLength,
			Timezones:            append([]string(nil), validate.DefaultTimezones...),
			LinkTimeout:          validate.DefaultLinkTimeout,
			SimilarityThreshold:  validate.DefaultSimilarityThreshold,
		},
		Builder: BuilderConfig{
			IDStrategy:      string(builder.IDSlug),
			DefaultTimezone: builder.DefaultTimezone,
		},
		Notify: NotifyConfig{
			APIURL: notifier.DefaultAPIURL,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment through getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvProvider); v != "" {
		c.LLM.Provider = strings.ToLower(v)
	}
	if v := getenv(EnvModel); v != "" {
		c.LLM.Model = v
	}

	switch c.LLM.Provider {
	case llm.ProviderOpenAI:
		c.LLM.APIKey = getenv(EnvOpenAIKey)
		if v := getenv(EnvOpenAIBase); v != "" && c.LLM.BaseURL == "" {
			c.LLM.BaseURL = v
		}
	case llm.ProviderGitHub, "":
		c.LLM.APIKey = getenv(EnvGitHubToken)
	}

	c.Notify.Token = getenv(EnvGitHubToken)
	if v := getenv(EnvNotifyRepo); v != "" {
		c.Notify.Repo = v
	}
	if v := getenv(EnvNotifyIssue); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvNotifyIssue, v)
		}
		c.Notify.Issue = n
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	if _, err := builder.ParseIDStrategy(c.Builder.IDStrategy); err != nil {
		return err
	}
	if _, err := c.maxFileSize(); err != nil {
		return err
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if t := c.Validation.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("similarity_threshold must be between 0 and 1, got %g", t)
	}
	if c.Builder.DefaultTimezone != "" {
		if _, err := time.LoadLocation(c.Builder.DefaultTimezone); err != nil {
			return fmt.Errorf("default_timezone: %w", err)
		}
	}
	return nil
}

func (c *Config) maxFileSize() (int64, error) {
	if strings.TrimSpace(c.Source.MaxFileSize) == "" {
		return source.DefaultMaxFileSize, nil
	}
	n, err := humanize.ParseBytes(c.Source.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("max_file_size: %w", err)
	}
	return int64(n), nil
}

// SourceOptions returns the extractor configuration
func (c *Config) SourceOptions() source.Config {
	size, err := c.maxFileSize()
	if err != nil {
		size = source.DefaultMaxFileSize
	}
	return source.Config{
		Timeout:       c.Source.Timeout,
		MaxRetries:    c.Source.MaxRetries,
		RetryInterval: c.Source.RetryInterval,
		MaxFileSize:   size,
		MaxTextLength: c.Source.MaxTextLength,
		MaxImages:     c.Source.MaxImages,
		EnableOCR:     c.Source.EnableOCR,
		EnableQR:      c.Source.EnableQR,
		OCRCommand:    c.Source.OCRCommand,
		OCRLanguages:  c.Source.OCRLanguages,
	}
}

// ValidateOptions returns the validator options. The link checker is
// created here so its timeout follows the config.
func (c *Config) ValidateOptions() validate.Options {
	opts := validate.Options{
		DescriptionMaxLength: c.Validation.DescriptionMaxLength,
		Timezones:            c.Validation.Timezones,
		SimilarityThreshold:  c.Validation.SimilarityThreshold,
		CheckLinks:           c.Validation.CheckLinks,
	}
	if opts.CheckLinks {
		opts.LinkChecker = validate.NewHTTPLinkChecker(c.Validation.LinkTimeout)
	}
	return opts
}

// NewBuilder returns a record builder following the config
func (c *Config) NewBuilder() *builder.Builder {
	b := builder.New()
	if s, err := builder.ParseIDStrategy(c.Builder.IDStrategy); err == nil {
		b.IDStrategy = s
	}
	if c.Builder.DefaultTimezone != "" {
		b.DefaultTimezone = c.Builder.DefaultTimezone
	}
	return b
}
