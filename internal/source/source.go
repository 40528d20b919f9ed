package source

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/logger"
)

// Kind identifies what an input turned out to be
type Kind string

const (
	KindURL   Kind = "url"
	KindFile  Kind = "file"
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultMaxFileSize   = 50 << 20
	DefaultMaxBodySize   = 10 << 20
	DefaultMaxTextLength = 10000
	DefaultMaxImages     = 5
	DefaultMaxPDFPages   = 10
	DefaultOCRCommand    = "tesseract"
	DefaultOCRLanguages  = "chi_sim+eng"
	UserAgent            = "activity-intake/1.0 (+https://github.com/pfrederiksen/activity-intake)"
)

// Config tunes an Extractor
type Config struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	MaxFileSize   int64         `yaml:"-"`
	MaxBodySize   int64         `yaml:"-"`
	MaxTextLength int           `yaml:"max_text_length"`
	MaxImages     int           `yaml:"max_images"`
	EnableOCR     bool          `yaml:"enable_ocr"`
	EnableQR      bool          `yaml:"enable_qr"`
	OCRCommand    string        `yaml:"ocr_command"`
	OCRLanguages  string        `yaml:"ocr_languages"`
}

// Metadata describes where the text came from
type Metadata struct {
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	ContentType string            `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Size        int64             `json:"size,omitempty" yaml:"size,omitempty"`
	Pages       int               `json:"pages,omitempty" yaml:"pages,omitempty"`
	Exif        map[string]string `json:"exif,omitempty" yaml:"exif,omitempty"`
}

// Result is the outcome of one extraction
type Result struct {
	Kind        Kind      `json:"kind" yaml:"kind"`
	SourceURL   string    `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	SourceFile  string    `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	Text        string    `json:"text" yaml:"text"`
	Images      []string  `json:"images,omitempty" yaml:"images,omitempty"`
	QRCodes     []string  `json:"qr_codes,omitempty" yaml:"qr_codes,omitempty"`
	Metadata    Metadata  `json:"metadata" yaml:"metadata"`
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// Source returns the URL or file the text came from, or "text"
func (r *Result) Source() string {
	switch {
	case r.SourceURL != "":
		return r.SourceURL
	case r.SourceFile != "":
		return r.SourceFile
	}
	return string(KindText)
}

// Extractor reads inputs of any supported kind
type Extractor struct {
	cfg Config
	web *webClient
	ocr OCR
	log *logger.Logger
	now func() time.Time
}

// New creates an Extractor. Zero config values take the package defaults.
func New(cfg Config, log *logger.Logger) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = DefaultMaxImages
	}
	if cfg.OCRCommand == "" {
		cfg.OCRCommand = DefaultOCRCommand
	}
	if cfg.OCRLanguages == "" {
		cfg.OCRLanguages = DefaultOCRLanguages
	}
	if log == nil {
		log = logger.Default()
	}

	e := &Extractor{
		cfg: cfg,
		web: newWebClient(cfg),
		log: log,
		now: time.Now,
	}
	if cfg.EnableOCR {
		e.ocr = Tesseract{Command: cfg.OCRCommand, Languages: cfg.OCRLanguages}
	}
	return e
}

// Detect classifies input: http(s) URLs, existing regular files, else raw text
func Detect(input string) Kind {
	s := strings.TrimSpace(input)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return KindURL
	}
	if !strings.ContainsAny(s, "\n") {
		if info, err := os.Stat(s); err == nil && info.Mode().IsRegular() {
			return KindFile
		}
	}
	return KindText
}

// Extract reads input and returns its text. Failures are *Error values.
func (e *Extractor) Extract(ctx context.Context, input string) (*Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &Error{Kind: KindText, Op: "read", Err: ErrEmptyInput}
	}

	start := time.Now()
	kind := Detect(input)

	var (
		res *Result
		err error
	)
	switch kind {
	case KindURL:
		res, err = e.extractURL(ctx, input)
	case KindFile:
		res, err = e.extractFile(ctx, input)
	default:
		res = &Result{Kind: KindText, Text: input}
	}
	logger.RecordTiming("source.extract", time.Since(start))

	if err != nil {
		logger.IncrCounter("source.error")
		e.log.Error("source extraction failed", logger.Fields{"kind": string(kind)}, err)
		return nil, err
	}

	res.ExtractedAt = e.now()
	e.log.Info("source extracted", logger.Fields{
		"kind":   string(res.Kind),
		"source": res.Source(),
		"chars":  len([]rune(res.Text)),
		"images": len(res.Images),
		"qr":     len(res.QRCodes),
	})
	return res, nil
}
