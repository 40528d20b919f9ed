package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/feedback"
	"github.com/pfrederiksen/activity-intake/internal/pipeline"
)

// outputItem is one processed input: a document or the error that
// prevented one
type outputItem struct {
	Input string
	Doc   *feedback.Document
	Err   error
}

// batchEntry is the JSON/YAML shape of an outputItem
type batchEntry struct {
	Input    string             `json:"input" yaml:"input"`
	Error    string             `json:"error,omitempty" yaml:"error,omitempty"`
	Document *feedback.Document `json:"document,omitempty" yaml:"document,omitempty"`
}

// BatchOutput contains data to be output for several inputs
type BatchOutput struct {
	CheckedAt time.Time    `json:"checked_at" yaml:"checked_at"`
	Total     int          `json:"total" yaml:"total"`
	Failed    int          `json:"failed" yaml:"failed"`
	Invalid   int          `json:"invalid" yaml:"invalid"`
	Results   []batchEntry `json:"results" yaml:"results"`
}

func itemsFromBatch(results []pipeline.BatchResult) []outputItem {
	items := make([]outputItem, len(results))
	for i, r := range results {
		items[i] = outputItem{Input: r.Input, Err: r.Err}
		if r.Outcome != nil {
			items[i].Doc = feedback.FromOutcome(r.Outcome)
		}
	}
	return items
}

func writeBatch(w io.Writer, f feedback.Format, results []pipeline.BatchResult, opts feedback.Options) error {
	return writeItems(w, f, itemsFromBatch(results), opts)
}

// writeItems writes the items in the specified format. Structured formats
// produce a single document; text and markdown print the items in order.
func writeItems(w io.Writer, f feedback.Format, items []outputItem, opts feedback.Options) error {
	switch f {
	case feedback.FormatJSON:
		return feedback.WriteJSON(w, newBatchOutput(items))
	case feedback.FormatYAML:
		return feedback.WriteYAML(w, newBatchOutput(items))
	case feedback.FormatWorkflow:
		now := time.Now()
		envs := make([]*feedback.Envelope, len(items))
		for i, it := range items {
			envs[i] = feedback.NewEnvelope(it.Doc, it.Err, now)
		}
		return feedback.WriteJSON(w, envs)
	case feedback.FormatText, feedback.FormatMarkdown:
		return writeSequential(w, f, items, opts)
	default:
		return fmt.Errorf("unknown format: %s", f)
	}
}

func newBatchOutput(items []outputItem) *BatchOutput {
	out := &BatchOutput{
		CheckedAt: time.Now().UTC(),
		Total:     len(items),
		Results:   make([]batchEntry, len(items)),
	}
	for i, it := range items {
		out.Results[i] = batchEntry{Input: it.Input, Document: it.Doc}
		if it.Err != nil {
			out.Results[i].Error = it.Err.Error()
			out.Failed++
			continue
		}
		if it.Doc != nil && it.Doc.Validation != nil && !it.Doc.Validation.IsValid() {
			out.Invalid++
		}
	}
	return out
}

func writeSequential(w io.Writer, f feedback.Format, items []outputItem, opts feedback.Options) error {
	failed := 0
	for i, it := range items {
		if i > 0 {
			sep := "\n"
			if f == feedback.FormatMarkdown {
				sep = "\n---\n\n"
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return err
			}
		}
		if f == feedback.FormatText {
			fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(items), it.Input)
		}

		if it.Err != nil {
			failed++
			if f == feedback.FormatText {
				fmt.Fprintf(w, "  Error: %v\n", it.Err)
				continue
			}
			if err := feedback.WriteFailure(w, f, it.Err, opts); err != nil {
				return err
			}
			continue
		}
		if err := feedback.Write(w, f, it.Doc, opts); err != nil {
			return err
		}
	}

	if f == feedback.FormatText && len(items) > 1 {
		fmt.Fprintf(w, "\nTotal: %d inputs, %d failed\n", len(items), failed)
	}
	return nil
}
