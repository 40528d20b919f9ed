package feedback

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format names an output rendering
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatWorkflow Format = "workflow"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatWorkflow:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be text, json, yaml, markdown or workflow)", s)
	}
}

// Options control rendering
type Options struct {
	Color bool
	Now   func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Write renders doc in format f
func Write(w io.Writer, f Format, doc *Document, opts Options) error {
	switch f {
	case FormatText:
		return WriteText(w, doc, opts.Color)
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatYAML:
		return WriteYAML(w, doc)
	case FormatMarkdown:
		_, err := io.WriteString(w, Comment(doc, opts.now()))
		return err
	case FormatWorkflow:
		return WriteJSON(w, NewEnvelope(doc, nil, opts.now()))
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

// WriteFailure renders a run that produced no record
func WriteFailure(w io.Writer, f Format, err error, opts Options) error {
	switch f {
	case FormatWorkflow:
		return WriteJSON(w, NewEnvelope(nil, err, opts.now()))
	case FormatJSON:
		return WriteJSON(w, map[string]string{"error": err.Error()})
	case FormatYAML:
		return WriteYAML(w, map[string]string{"error": err.Error()})
	case FormatMarkdown:
		_, werr := io.WriteString(w, FailureComment(err))
		return werr
	default:
		return nil
	}
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteYAML writes v as YAML with two-space indentation
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Envelope is the JSON object the issue workflow consumes
type Envelope struct {
	Success bool      `json:"success"`
	Error   *string   `json:"error"`
	Comment string    `json:"comment"`
	Data    *Document `json:"data"`
}

// NewEnvelope wraps a finished run (doc) or a failed one (err)
func NewEnvelope(doc *Document, err error, now time.Time) *Envelope {
	if err != nil {
		msg := err.Error()
		return &Envelope{Error: &msg, Comment: FailureComment(err)}
	}
	return &Envelope{
		Success: true,
		Comment: Comment(doc, now),
		Data:    doc,
	}
}
