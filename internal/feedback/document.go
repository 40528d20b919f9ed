package feedback

import (
	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/pipeline"
	"github.com/pfrederiksen/activity-intake/internal/validate"
)

// previewLength is the number of characters of source text shown in reports
const previewLength = 200

// SourceSummary describes the extracted input
type SourceSummary struct {
	Kind    string `json:"kind" yaml:"kind"`
	Source  string `json:"source" yaml:"source"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Chars   int    `json:"chars" yaml:"chars"`
	Images  int    `json:"images" yaml:"images"`
	QRCodes int    `json:"qr_codes" yaml:"qr_codes"`
	Preview string `json:"preview" yaml:"preview"`
}

// Document is the machine-readable result of a run or of validating a
// stored record
type Document struct {
	RunID      string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source     *SourceSummary   `json:"source,omitempty" yaml:"source,omitempty"`
	Record     *activity.Record `json:"record" yaml:"record"`
	Validation *validate.Result `json:"validation" yaml:"validation"`
	Links      []string         `json:"links,omitempty" yaml:"links,omitempty"`
}

// FromOutcome summarizes a pipeline outcome
func FromOutcome(out *pipeline.Outcome) *Document {
	doc := &Document{
		RunID:      out.RunID,
		Record:     out.Record,
		Validation: out.Validation,
		Links:      out.Links,
	}
	if src := out.Source; src != nil {
		runes := []rune(src.Text)
		doc.Source = &SourceSummary{
			Kind:    string(src.Kind),
			Source:  src.Source(),
			Title:   src.Metadata.Title,
			Chars:   len(runes),
			Images:  len(src.Images),
			QRCodes: len(src.QRCodes),
			Preview: preview(runes),
		}
	}
	return doc
}

// FromRecord wraps a stored record and its validation result
func FromRecord(rec *activity.Record, res *validate.Result) *Document {
	return &Document{Record: rec, Validation: res}
}

func preview(runes []rune) string {
	if len(runes) <= previewLength {
		return flatten(string(runes))
	}
	return flatten(string(runes[:previewLength])) + "..."
}

func flatten(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == '\n' || r == '\r' {
			out[i] = ' '
		}
	}
	return string(out)
}
