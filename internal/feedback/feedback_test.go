package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/pipeline"
	"github.com/pfrederiksen/activity-intake/internal/source"
	"github.com/pfrederiksen/activity-intake/internal/validate"
	"gopkg.in/yaml.v3"
)

var fixedNow = time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)

func testOutcome() *pipeline.Outcome {
	res := &validate.Result{}
	res.Add(validate.Issue{Field: "events[0].id", Issue: "ID已存在: ospp-2025", Level: validate.LevelError, Suggestion: "请更改ID或检查是否重复添加"})
	res.Add(validate.Issue{Field: "events[0].link", Issue: "缺少活动链接", Level: validate.LevelWarning})
	res.Add(validate.Issue{Field: "tags", Issue: "未添加任何标签", Level: validate.LevelInfo, Suggestion: "建议添加3-5个相关标签"})

	return &pipeline.Outcome{
		RunID: "run-1",
		Source: &source.Result{
			Kind:      source.KindURL,
			SourceURL: "https://example.com/ospp",
			Text:      "开源之夏\n地点：中国，上海\n" + strings.Repeat("详", 300),
			Images:    []string{"https://example.com/poster.png"},
		},
		Record: &activity.Record{
			Title:       "开源之夏",
			Description: "面向高校学生的开源活动",
			Category:    activity.CategoryActivity,
			Tags:        []string{"开源", "校园"},
			Events: []activity.Event{{
				Year:     2025,
				ID:       "ospp-2025",
				Link:     "https://example.com/ospp",
				Timezone: "Asia/Shanghai",
				Date:     "2025-06-04",
				Place:    "中国，上海",
				Timeline: []activity.TimelineEntry{{Deadline: "2025-06-04T09:00:00", Comment: "活动开始"}},
			}},
		},
		Validation: res,
		Links:      []string{"https://example.com/ospp"},
	}
}

func TestFromOutcome(t *testing.T) {
	doc := FromOutcome(testOutcome())

	if doc.Source == nil {
		t.Fatal("expected source summary")
	}
	if doc.Source.Kind != "url" || doc.Source.Source != "https://example.com/ospp" {
		t.Errorf("unexpected source %+v", doc.Source)
	}
	if doc.Source.Chars != 4+1+8+1+300 {
		t.Errorf("unexpected char count %d", doc.Source.Chars)
	}
	if doc.Source.Images != 1 {
		t.Errorf("expected 1 image, got %d", doc.Source.Images)
	}
	if !strings.HasSuffix(doc.Source.Preview, "...") || strings.Contains(doc.Source.Preview, "\n") {
		t.Errorf("unexpected preview %q", doc.Source.Preview)
	}
	if n := len([]rune(doc.Source.Preview)); n != previewLength+3 {
		t.Errorf("expected %d preview characters, got %d", previewLength+3, n)
	}
}

func TestComment(t *testing.T) {
	md := Comment(FromOutcome(testOutcome()), fixedNow)

	for _, want := range []string{
		"## 🤖 活动信息提取结果",
		"- **信息源**: [网页链接](https://example.com/ospp)",
		"- **图片数量**: 1",
		"  - https://example.com/ospp",
		"| 活动名称 | 开源之夏 |",
		"| 活动ID | `ospp-2025` |",
		"```yaml\n- title: 开源之夏\n",
		"❌ **验证失败**",
		"- 🔴 错误: 1",
		"- **events[0].id**: ID已存在: ospp-2025",
		"  > 💡 建议: 请更改ID或检查是否重复添加",
		"#### 🟡 警告 (建议修复)",
		"#### 🔵 提示信息",
		"2025-03-01T08:30:00 UTC",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("comment missing %q", want)
		}
	}
}

func TestCommentForTextSource(t *testing.T) {
	out := testOutcome()
	out.Source = &source.Result{Kind: source.KindText, Text: "活动"}
	out.Links = nil

	md := Comment(FromOutcome(out), fixedNow)
	if !strings.Contains(md, "- **信息源**: 纯文本") {
		t.Error("expected plain text source line")
	}
	if strings.Contains(md, "检测到的链接") {
		t.Error("links section should be omitted without links")
	}
}

func TestCommentEscapesTableCells(t *testing.T) {
	out := testOutcome()
	out.Record.Title = "A | B"
	md := Comment(FromOutcome(out), fixedNow)
	if !strings.Contains(md, `| 活动名称 | A \| B |`) {
		t.Error("expected escaped pipe in table cell")
	}
}

func TestWriteTextPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, FromOutcome(testOutcome()), false); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "\x1b[") {
		t.Error("expected no escape sequences without color")
	}
	for _, want := range []string{
		"Source: https://example.com/ospp (url, 314 chars)",
		"开源之夏\n",
		"  place       中国，上海\n",
		"  timeline    2025-06-04T09:00:00  活动开始\n",
		"✗ invalid (1 errors, 1 warnings, 1 suggestions)",
		"  ERROR   events[0].id: ID已存在: ospp-2025",
		"          → 请更改ID或检查是否重复添加",
		"  WARN    events[0].link: 缺少活动链接",
		"  INFO    tags: 未添加任何标签",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\n%s", want, out)
		}
	}
}

func TestWriteTextColored(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, FromOutcome(testOutcome()), true); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[31m") {
		t.Error("expected red escape sequence for errors")
	}
}

func TestColorEnabledForNonTerminal(t *testing.T) {
	if ColorEnabled(&bytes.Buffer{}, false) {
		t.Error("buffers are not terminals")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, FromOutcome(testOutcome()), Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got struct {
		RunID  string `json:"run_id"`
		Record struct {
			Title  string `json:"title"`
			Events []struct {
				ID       string `json:"id"`
				Timeline []struct {
					Deadline string `json:"deadline"`
				} `json:"timeline"`
			} `json:"events"`
		} `json:"record"`
		Validation struct {
			IsValid    bool `json:"is_valid"`
			ErrorCount int  `json:"error_count"`
		} `json:"validation"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Record.Title != "开源之夏" {
		t.Errorf("unexpected document %+v", got)
	}
	if got.Record.Events[0].Timeline[0].Deadline != "2025-06-04T09:00:00" {
		t.Errorf("deadline changed: %q", got.Record.Events[0].Timeline[0].Deadline)
	}
	if got.Validation.IsValid || got.Validation.ErrorCount != 1 {
		t.Errorf("unexpected validation %+v", got.Validation)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, FromOutcome(testOutcome()), Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	v, ok := got["validation"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing validation in %v", got)
	}
	if v["is_valid"] != false || v["warning_count"] != 1 {
		t.Errorf("unexpected validation %v", v)
	}
}

func TestEnvelope(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		opts := Options{Now: func() time.Time { return fixedNow }}
		if err := Write(&buf, FormatWorkflow, FromOutcome(testOutcome()), opts); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		var env map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if env["success"] != true || env["error"] != nil {
			t.Errorf("unexpected envelope %v", env)
		}
		if !strings.Contains(env["comment"].(string), "活动信息提取结果") {
			t.Error("expected markdown comment in envelope")
		}
		if env["data"] == nil {
			t.Error("expected data")
		}
	})

	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteFailure(&buf, FormatWorkflow, errors.New("fetch url: unexpected status code: 404"), Options{}); err != nil {
			t.Fatalf("WriteFailure failed: %v", err)
		}

		var env map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if env["success"] != false || env["data"] != nil {
			t.Errorf("unexpected envelope %v", env)
		}
		if env["error"] != "fetch url: unexpected status code: 404" {
			t.Errorf("unexpected error %v", env["error"])
		}
		if !strings.Contains(env["comment"].(string), "❌ **信息提取失败**") {
			t.Error("expected failure comment")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"md", FormatMarkdown, false},
		{"workflow", FormatWorkflow, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
