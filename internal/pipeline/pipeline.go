package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/builder"
	"github.com/pfrederiksen/activity-intake/internal/llm"
	"github.com/pfrederiksen/activity-intake/internal/logger"
	"github.com/pfrederiksen/activity-intake/internal/patterns"
	"github.com/pfrederiksen/activity-intake/internal/reconcile"
	"github.com/pfrederiksen/activity-intake/internal/source"
	"github.com/pfrederiksen/activity-intake/internal/validate"
	"golang.org/x/sync/errgroup"
)

// Extractor reads an input into text
type Extractor interface {
	Extract(ctx context.Context, input string) (*source.Result, error)
}

// FieldParser asks a model for semantic fields. A nil result means no
// contribution.
type FieldParser interface {
	Parse(ctx context.Context, text string) *llm.Fields
}

// Outcome is the result of one successful run
type Outcome struct {
	RunID      string           `json:"run_id" yaml:"run_id"`
	Source     *source.Result   `json:"source" yaml:"source"`
	LLM        *llm.Fields      `json:"llm,omitempty" yaml:"llm,omitempty"`
	Fields     reconcile.Fields `json:"fields" yaml:"fields"`
	Record     *activity.Record `json:"record" yaml:"record"`
	Validation *validate.Result `json:"validation" yaml:"validation"`
	Links      []string         `json:"links" yaml:"links"`
	Duration   time.Duration    `json:"duration" yaml:"duration"`
}

// Pipeline wires the stages together. It holds no per-run state and is safe
// for concurrent use.
type Pipeline struct {
	extractor Extractor
	parser    FieldParser
	builder   *builder.Builder
	validator *validate.Validator
	log       *logger.Logger
	newRunID  func() string
}

// New creates a pipeline. parser may be nil to run on rules alone.
func New(ext Extractor, parser FieldParser, b *builder.Builder, v *validate.Validator, log *logger.Logger) *Pipeline {
	if b == nil {
		b = builder.New()
	}
	if v == nil {
		v = validate.New(nil, validate.Options{})
	}
	if log == nil {
		log = logger.Default()
	}
	return &Pipeline{
		extractor: ext,
		parser:    parser,
		builder:   b,
		validator: v,
		log:       log,
		newRunID:  uuid.NewString,
	}
}

// Run processes one input
func (p *Pipeline) Run(ctx context.Context, input string) (*Outcome, error) {
	start := time.Now()
	runID := p.newRunID()
	log := p.log.With(logger.Fields{"run_id": runID})
	logger.IncrCounter("pipeline.runs")

	out, err := p.run(ctx, runID, input, log)
	logger.RecordTiming("pipeline.run", time.Since(start))
	if err != nil {
		logger.IncrCounter("pipeline.failed")
		log.Error("run failed", nil, err)
		return nil, err
	}

	out.Duration = time.Since(start)
	log.Info("run complete", logger.Fields{
		"record_id": out.Record.EventIDs(),
		"valid":     out.Validation.IsValid(),
		"errors":    len(out.Validation.Errors),
		"warnings":  len(out.Validation.Warnings),
		"duration":  out.Duration.String(),
	})
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, runID, input string, log *logger.Logger) (*Outcome, error) {
	if p.extractor == nil {
		return nil, &UnexpectedError{RunID: runID, Stage: "extract", Err: fmt.Errorf("no extractor configured")}
	}

	src, err := p.extractor.Extract(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &UnexpectedError{RunID: runID, Stage: "extract", Err: err}
	}
	log.Debug("text extracted", logger.Fields{"kind": string(src.Kind), "chars": len([]rune(src.Text))})

	var fields *llm.Fields
	if p.parser != nil {
		fields = p.parser.Parse(ctx, src.Text)
	}
	log.Debug("llm stage finished", logger.Fields{"contributed": fields != nil})

	out := &Outcome{
		RunID:  runID,
		Source: src,
		LLM:    fields,
		Links:  patterns.ExtractLinks(src.Text),
	}

	err = guard(runID, "reconcile", func() {
		out.Fields = reconcile.Reconcile(reconcile.Input{
			Text:      src.Text,
			SourceURL: src.SourceURL,
			LLM:       fields,
		})
	})
	if err != nil {
		return nil, err
	}

	err = guard(runID, "build", func() {
		out.Record = p.builder.Build(out.Fields)
	})
	if err != nil {
		return nil, err
	}

	err = guard(runID, "validate", func() {
		out.Validation = p.validator.Validate(ctx, out.Record)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// guard runs fn and converts a panic into an *UnexpectedError
func guard(runID, stage string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UnexpectedError{RunID: runID, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	fn()
	return nil
}

// BatchResult is the outcome of one input of a batch. Exactly one of
// Outcome and Err is set.
type BatchResult struct {
	Input   string
	Outcome *Outcome
	Err     error
}

// RunBatch processes inputs with at most parallelism concurrent runs.
// Results keep input order; one failing input does not stop the others.
func (p *Pipeline) RunBatch(ctx context.Context, inputs []string, parallelism int) []BatchResult {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]BatchResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(parallelism)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			results[i].Input = in
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Outcome, results[i].Err = p.Run(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	p.log.Info("batch complete", logger.Fields{
		"inputs":      len(inputs),
		"failed":      countFailed(results),
		"parallelism": parallelism,
	})
	return results
}

func countFailed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
