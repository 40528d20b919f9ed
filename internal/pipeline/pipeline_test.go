package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/builder"
	"github.com/pfrederiksen/activity-intake/internal/llm"
	"github.com/pfrederiksen/activity-intake/internal/logger"
	"github.com/pfrederiksen/activity-intake/internal/source"
	"github.com/pfrederiksen/activity-intake/internal/storage"
	"github.com/pfrederiksen/activity-intake/internal/validate"
)

type fakeExtractor struct {
	texts map[string]string
	url   string
}

func (f *fakeExtractor) Extract(ctx context.Context, input string) (*source.Result, error) {
	text, ok := f.texts[input]
	if !ok {
		return nil, &source.Error{Kind: source.KindURL, Source: input, Op: "fetch", Err: errors.New("unexpected status code: 404")}
	}
	return &source.Result{Kind: source.KindText, SourceURL: f.url, Text: text}, nil
}

type fakeParser struct {
	fields *llm.Fields
	calls  int32
}

func (f *fakeParser) Parse(ctx context.Context, text string) *llm.Fields {
	atomic.AddInt32(&f.calls, 1)
	return f.fields
}

func fixedBuilder() *builder.Builder {
	b := builder.New()
	b.Now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return b
}

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, io.Discard)
}

func TestRunRulesOnly(t *testing.T) {
	ext := &fakeExtractor{texts: map[string]string{
		"summer": "开源之夏，地点：中国，上海，2025年6月4日 09:00-18:00",
	}}
	p := New(ext, nil, fixedBuilder(), validate.New(storage.NewCorpus(), validate.Options{}), quietLogger())

	out, err := p.Run(context.Background(), "summer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.RunID == "" {
		t.Error("expected run id")
	}
	ev := out.Record.Events[0]
	if ev.Place != "中国，上海" {
		t.Errorf("expected place 中国，上海, got %q", ev.Place)
	}
	if ev.Date != "2025-06-04" {
		t.Errorf("expected date 2025-06-04, got %q", ev.Date)
	}
	want := []activity.TimelineEntry{
		{Deadline: "2025-06-04T09:00:00", Comment: "活动开始"},
		{Deadline: "2025-06-04T18:00:00", Comment: "活动结束"},
	}
	if len(ev.Timeline) != 2 || ev.Timeline[0] != want[0] || ev.Timeline[1] != want[1] {
		t.Errorf("unexpected timeline %+v", ev.Timeline)
	}
	if ev.Year != 2025 {
		t.Errorf("expected year 2025, got %d", ev.Year)
	}
	if out.Validation == nil {
		t.Fatal("expected validation result")
	}
}

func TestRunUsesLLMFields(t *testing.T) {
	ext := &fakeExtractor{
		texts: map[string]string{"page": "KubeCon China 2025年9月10日 报名 https://events.example.com/kubecon"},
		url:   "https://events.example.com/kubecon",
	}
	parser := &fakeParser{fields: &llm.Fields{
		Title:       "KubeCon China",
		Description: "云原生技术大会",
		Category:    "Conference",
		Tags:        llm.StringList{"云原生", "会议"},
	}}
	p := New(ext, parser, fixedBuilder(), nil, quietLogger())

	out, err := p.Run(context.Background(), "page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Record.Title != "KubeCon China" || out.Record.Category != activity.CategoryConference {
		t.Errorf("unexpected record %+v", out.Record)
	}
	if out.Record.Events[0].ID != "kubecon-china" {
		t.Errorf("unexpected id %q", out.Record.Events[0].ID)
	}
	if out.Record.Events[0].Link != "https://events.example.com/kubecon" {
		t.Errorf("unexpected link %q", out.Record.Events[0].Link)
	}
	if len(out.Links) != 1 || out.Links[0] != "https://events.example.com/kubecon" {
		t.Errorf("unexpected links %v", out.Links)
	}
	if out.LLM == nil {
		t.Error("expected LLM fields on the outcome")
	}
}

func TestRunReportsDuplicateID(t *testing.T) {
	corpus := storage.NewCorpus()
	corpus.Add(activity.CategoryConference, &activity.Record{
		Title:  "KubeCon China",
		Events: []activity.Event{{ID: "kubecon-china"}},
	})
	ext := &fakeExtractor{texts: map[string]string{"page": "text"}}
	parser := &fakeParser{fields: &llm.Fields{Title: "KubeCon China"}}
	p := New(ext, parser, fixedBuilder(), validate.New(corpus, validate.Options{}), quietLogger())

	out, err := p.Run(context.Background(), "page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := 0
	for _, is := range out.Validation.Errors {
		if is.Field == "events[0].id" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected exactly one id error, got %+v", out.Validation.Errors)
	}
}

func TestRunSourceError(t *testing.T) {
	parser := &fakeParser{}
	p := New(&fakeExtractor{}, parser, nil, nil, quietLogger())

	out, err := p.Run(context.Background(), "https://example.com/missing")
	if out != nil {
		t.Error("expected no outcome on source failure")
	}
	var serr *source.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *source.Error, got %v", err)
	}
	if atomic.LoadInt32(&parser.calls) != 0 {
		t.Error("parser must not run after a source failure")
	}
}

func TestRunWithoutExtractor(t *testing.T) {
	_, err := New(nil, nil, nil, nil, quietLogger()).Run(context.Background(), "text")

	var uerr *UnexpectedError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnexpectedError, got %v", err)
	}
	if uerr.Stage != "extract" {
		t.Errorf("unexpected stage %q", uerr.Stage)
	}
}

func TestGuardRecoversPanic(t *testing.T) {
	err := guard("run-1", "build", func() { panic("nil title") })

	var uerr *UnexpectedError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnexpectedError, got %v", err)
	}
	if uerr.RunID != "run-1" || uerr.Stage != "build" {
		t.Errorf("unexpected error %+v", uerr)
	}
	if !strings.Contains(err.Error(), "nil title") {
		t.Errorf("expected panic message in %q", err.Error())
	}

	if err := guard("run-1", "build", func() {}); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

type slowExtractor struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (s *slowExtractor) Extract(ctx context.Context, input string) (*source.Result, error) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	if strings.HasPrefix(input, "bad") {
		return nil, &source.Error{Kind: source.KindText, Op: "read", Err: source.ErrEmptyInput}
	}
	return &source.Result{Kind: source.KindText, Text: input}, nil
}

func TestRunBatch(t *testing.T) {
	ext := &slowExtractor{}
	p := New(ext, nil, fixedBuilder(), nil, quietLogger())

	inputs := make([]string, 8)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("活动 %d 2025-05-%02d", i, i+1)
	}
	inputs[3] = "bad input"

	results := p.RunBatch(context.Background(), inputs, 3)

	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	for i, r := range results {
		if r.Input != inputs[i] {
			t.Errorf("result %d: input order not preserved", i)
		}
		if i == 3 {
			if r.Err == nil || r.Outcome != nil {
				t.Errorf("expected failure for bad input, got %+v", r)
			}
			continue
		}
		if r.Err != nil || r.Outcome == nil {
			t.Errorf("result %d: unexpected failure %v", i, r.Err)
		}
	}
	if ext.maxSeen > 3 {
		t.Errorf("expected at most 3 concurrent runs, saw %d", ext.maxSeen)
	}

	ids := map[string]bool{}
	for _, r := range results {
		if r.Outcome != nil {
			ids[r.Outcome.RunID] = true
		}
	}
	if len(ids) != 7 {
		t.Errorf("expected 7 distinct run ids, got %d", len(ids))
	}
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := New(&slowExtractor{}, nil, nil, nil, quietLogger()).RunBatch(ctx, []string{"a", "b"}, 2)
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.Err)
		}
	}
}
