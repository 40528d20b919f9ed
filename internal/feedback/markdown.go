package feedback

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/storage"
	"github.com/pfrederiksen/activity-intake/internal/validate"
)

// Comment renders doc as the markdown comment posted on the intake issue
func Comment(doc *Document, now time.Time) string {
	var b strings.Builder

	b.WriteString("## 🤖 活动信息提取结果\n\n")
	b.WriteString("✅ **信息提取成功**\n\n")

	if doc.Source != nil {
		writeSourceSummary(&b, doc.Source, doc.Links)
	}
	if doc.Record != nil {
		writeRecord(&b, doc.Record)
	}
	if doc.Validation != nil {
		writeValidation(&b, doc.Validation)
	}
	writeFooter(&b, now)
	return b.String()
}

// FailureComment renders the comment for a run that produced no record
func FailureComment(err error) string {
	var b strings.Builder
	b.WriteString("## 🤖 活动信息提取结果\n\n")
	fmt.Fprintf(&b, "❌ **信息提取失败**: %s\n\n", err)
	b.WriteString("请确保:\n")
	b.WriteString("1. URL 可访问\n")
	b.WriteString("2. URL 指向的页面包含活动信息\n")
	b.WriteString("3. 或提供足够的活动文本描述\n")
	return b.String()
}

func writeSourceSummary(b *strings.Builder, s *SourceSummary, links []string) {
	b.WriteString("### 📋 信息提取摘要\n\n")
	switch s.Kind {
	case "url":
		fmt.Fprintf(b, "- **信息源**: [网页链接](%s)\n", s.Source)
	case "text":
		b.WriteString("- **信息源**: 纯文本\n")
	default:
		fmt.Fprintf(b, "- **信息源**: 文件 (`%s`)\n", s.Source)
	}
	fmt.Fprintf(b, "- **文本字符数**: %d\n", s.Chars)
	fmt.Fprintf(b, "- **图片数量**: %d\n", s.Images)
	fmt.Fprintf(b, "- **二维码数量**: %d\n", s.QRCodes)
	if len(links) > 0 {
		b.WriteString("- **检测到的链接**:\n")
		for _, l := range links {
			fmt.Fprintf(b, "  - %s\n", l)
		}
	}
	fmt.Fprintf(b, "\n**文本预览**:\n```\n%s\n```\n\n", s.Preview)
}

func writeRecord(b *strings.Builder, rec *activity.Record) {
	b.WriteString("### 📝 解析后的数据\n\n")
	b.WriteString("| 字段 | 值 |\n")
	b.WriteString("|-----|-----|\n")
	fmt.Fprintf(b, "| 活动名称 | %s |\n", cell(rec.Title))
	fmt.Fprintf(b, "| 活动分类 | %s |\n", rec.Category)
	fmt.Fprintf(b, "| 活动描述 | %s |\n", cell(rec.Description))
	tags := "(无)"
	if len(rec.Tags) > 0 {
		tags = strings.Join(rec.Tags, ", ")
	}
	fmt.Fprintf(b, "| 标签 | %s |\n", cell(tags))

	if len(rec.Events) > 0 {
		ev := rec.Events[0]
		fmt.Fprintf(b, "| 活动年份 | %d |\n", ev.Year)
		fmt.Fprintf(b, "| 活动ID | `%s` |\n", ev.ID)
		if ev.Link != "" {
			fmt.Fprintf(b, "| 活动链接 | [%s](%s) |\n", ev.Link, ev.Link)
		} else {
			b.WriteString("| 活动链接 |  |\n")
		}
		fmt.Fprintf(b, "| 活动地点 | %s |\n", cell(ev.Place))
		fmt.Fprintf(b, "| 时区 | %s |\n", ev.Timezone)
		fmt.Fprintf(b, "| 日期范围 | %s |\n", ev.Date)
	}
	b.WriteString("\n")

	b.WriteString("**YAML 格式**:\n\n```yaml\n")
	if data, err := storage.EncodeRecords([]*activity.Record{rec}); err == nil {
		b.Write(data)
	} else {
		fmt.Fprintf(b, "# %v\n", err)
	}
	b.WriteString("```\n\n")
}

func writeValidation(b *strings.Builder, res *validate.Result) {
	b.WriteString("### ✔️ 数据验证报告\n\n")
	if res.IsValid() {
		b.WriteString("✅ **验证通过**\n\n")
	} else {
		b.WriteString("❌ **验证失败**\n\n")
	}
	fmt.Fprintf(b, "- 🔴 错误: %d\n", len(res.Errors))
	fmt.Fprintf(b, "- 🟡 警告: %d\n", len(res.Warnings))
	fmt.Fprintf(b, "- 🔵 提示: %d\n\n", len(res.Suggestions))

	writeIssues(b, "#### 🔴 错误 (必须修复)", res.Errors)
	writeIssues(b, "#### 🟡 警告 (建议修复)", res.Warnings)
	writeIssues(b, "#### 🔵 提示信息", res.Suggestions)
}

func writeIssues(b *strings.Builder, heading string, issues []validate.Issue) {
	if len(issues) == 0 {
		return
	}
	b.WriteString(heading + "\n\n")
	for _, is := range issues {
		fmt.Fprintf(b, "- **%s**: %s\n", is.Field, is.Issue)
		if is.Suggestion != "" {
			fmt.Fprintf(b, "  > 💡 建议: %s\n", is.Suggestion)
		}
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder, now time.Time) {
	b.WriteString("---\n\n")
	b.WriteString("### 📌 下一步\n\n")
	b.WriteString("1. **检查数据准确性**: 请务必核实上述提取的信息是否准确\n")
	b.WriteString("2. **解决问题**: 如有错误，请编辑 Issue 或在评论中提出修正\n")
	b.WriteString("3. **审核确认**: 数据验证通过后，可联系 Maintainer 进行审核\n")
	b.WriteString("4. **等待集成**: Maintainer 确认无误后，将创建 PR 并合并到数据文件\n\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(b, "*此评论由 activity-intake 自动生成于 %s UTC*\n", now.UTC().Format("2006-01-02T15:04:05"))
}

// cell escapes a value for a markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
