package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/logger"
	"github.com/pfrederiksen/activity-intake/internal/storage"
)

const (
	// DefaultDescriptionMaxLength is the description length, in characters,
	// above which a warning is raised
	DefaultDescriptionMaxLength = 100

	// DefaultSimilarityThreshold is the minimum ratio for two tags to count
	// as near-duplicates
	DefaultSimilarityThreshold = 0.6

	minYear = 1900
	maxYear = 2100
)

// DefaultTimezones is the zone allow-list used when Options.Timezones is empty
var DefaultTimezones = []string{
	"Asia/Shanghai",
	"Asia/Beijing",
	"Asia/Tokyo",
	"Asia/Seoul",
	"Asia/Singapore",
	"Asia/Hong_Kong",
	"Asia/Taipei",
	"Asia/Bangkok",
	"America/New_York",
	"America/Los_Angeles",
	"America/Chicago",
	"America/Denver",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Europe/Moscow",
	"UTC",
}

var linkFormat = regexp.MustCompile(`^https?://\S+`)

// Options tune a Validator
type Options struct {
	DescriptionMaxLength int
	Timezones            []string
	SimilarityThreshold  float64

	// CheckLinks enables the HEAD request against each event link
	CheckLinks bool
	// LinkChecker performs that request; nil means a default HTTPLinkChecker
	LinkChecker LinkChecker

	Logger *logger.Logger
}

// Validator checks records against a corpus snapshot
type Validator struct {
	corpus    *storage.Corpus
	vocab     []string
	timezones map[string]bool
	opts      Options
	log       *logger.Logger
}

// New creates a validator. A nil corpus is treated as empty.
func New(corpus *storage.Corpus, opts Options) *Validator {
	if corpus == nil {
		corpus = storage.NewCorpus()
	}
	if opts.DescriptionMaxLength <= 0 {
		opts.DescriptionMaxLength = DefaultDescriptionMaxLength
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if len(opts.Timezones) == 0 {
		opts.Timezones = DefaultTimezones
	}
	if opts.CheckLinks && opts.LinkChecker == nil {
		opts.LinkChecker = NewHTTPLinkChecker(DefaultLinkTimeout)
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	tz := make(map[string]bool, len(opts.Timezones))
	for _, z := range opts.Timezones {
		tz[z] = true
	}

	return &Validator{
		corpus:    corpus,
		vocab:     corpus.Tags(),
		timezones: tz,
		opts:      opts,
		log:       log,
	}
}

// Validate checks rec and returns every finding. It never fails; network
// problems become suggestions.
func (v *Validator) Validate(ctx context.Context, rec *activity.Record) *Result {
	start := time.Now()
	defer func() {
		logger.RecordTiming("validate.record", time.Since(start))
	}()

	res := &Result{}
	if rec == nil {
		res.Add(Issue{Field: "events", Issue: "至少需要一个事件", Level: LevelError})
		return res
	}

	v.checkBasic(rec, res)
	for i, ev := range rec.Events {
		v.checkEvent(ctx, i, ev, res)
	}
	v.checkTags(rec, res)

	if len(rec.Events) == 0 {
		res.Add(Issue{Field: "events", Issue: "至少需要一个事件", Level: LevelError})
	}

	v.log.Debug("record validated", logger.Fields{
		"title":       rec.Title,
		"errors":      len(res.Errors),
		"warnings":    len(res.Warnings),
		"suggestions": len(res.Suggestions),
	})
	return res
}

func (v *Validator) checkBasic(rec *activity.Record, res *Result) {
	if strings.TrimSpace(rec.Title) == "" {
		res.Add(Issue{Field: "title", Issue: "标题不能为空", Level: LevelError})
	}

	desc := strings.TrimSpace(rec.Description)
	if desc == "" {
		res.Add(Issue{
			Field:      "description",
			Issue:      "缺少活动描述",
			Level:      LevelWarning,
			Suggestion: "请添加一句话描述活动",
		})
	} else if n := utf8.RuneCountInString(desc); n > v.opts.DescriptionMaxLength {
		res.Add(Issue{
			Field:      "description",
			Issue:      fmt.Sprintf("描述过长 (%d > %d)", n, v.opts.DescriptionMaxLength),
			Level:      LevelWarning,
			Suggestion: fmt.Sprintf("请将描述缩短为 %d 字以内", v.opts.DescriptionMaxLength),
		})
	}

	switch {
	case strings.TrimSpace(string(rec.Category)) == "":
		res.Add(Issue{Field: "category", Issue: "活动分类不能为空", Level: LevelError})
	case !rec.Category.Valid():
		res.Add(Issue{
			Field:      "category",
			Issue:      fmt.Sprintf("活动分类无效: %s", rec.Category),
			Level:      LevelError,
			Suggestion: categoryList(),
		})
	}
}

func (v *Validator) checkEvent(ctx context.Context, idx int, ev activity.Event, res *Result) {
	prefix := fmt.Sprintf("events[%d]", idx)

	if ev.Year <= minYear || ev.Year > maxYear {
		res.Add(Issue{Field: prefix + ".year", Issue: fmt.Sprintf("年份不合理: %d", ev.Year), Level: LevelError})
	}

	if ev.ID == "" {
		res.Add(Issue{Field: prefix + ".id", Issue: "ID不能为空", Level: LevelError})
	} else {
		v.checkID(prefix+".id", ev.ID, res)
	}

	if ev.Link == "" {
		res.Add(Issue{Field: prefix + ".link", Issue: "缺少活动链接", Level: LevelWarning})
	} else {
		v.checkLink(ctx, prefix+".link", ev.Link, res)
	}

	if ev.Timezone == "" {
		res.Add(Issue{Field: prefix + ".timezone", Issue: "时区不能为空", Level: LevelError})
	} else if !v.timezones[ev.Timezone] && ev.Timezone != "UTC" {
		res.Add(Issue{
			Field:      prefix + ".timezone",
			Issue:      fmt.Sprintf("时区无效: %s", ev.Timezone),
			Level:      LevelError,
			Suggestion: "请使用标准IANA时区名称，如: Asia/Shanghai",
		})
	}

	if len(ev.Timeline) == 0 {
		res.Add(Issue{Field: prefix + ".timeline", Issue: "缺少关键时间点", Level: LevelWarning})
	} else {
		checkTimeline(prefix+".timeline", ev.Timeline, res)
	}

	if strings.TrimSpace(ev.Place) == "" {
		res.Add(Issue{Field: prefix + ".place", Issue: "缺少地点信息", Level: LevelWarning})
	}
	if strings.TrimSpace(ev.Date) == "" {
		res.Add(Issue{Field: prefix + ".date", Issue: "缺少人类可读的日期范围", Level: LevelWarning})
	}
}

func (v *Validator) checkID(field, id string, res *Result) {
	if !activity.ValidID(id) {
		res.Add(Issue{
			Field:      field,
			Issue:      "ID格式不正确（仅允许小写字母、数字和连字符）",
			Level:      LevelError,
			Suggestion: "建议: " + activity.SlugID(id),
		})
		return
	}
	if v.corpus.HasID(id) {
		res.Add(Issue{
			Field:      field,
			Issue:      fmt.Sprintf("ID已存在: %s", id),
			Level:      LevelError,
			Suggestion: "请更改ID或检查是否重复添加",
		})
	}
}

func (v *Validator) checkLink(ctx context.Context, field, link string, res *Result) {
	if !linkFormat.MatchString(link) {
		res.Add(Issue{Field: field, Issue: "链接格式不正确（必须以http://或https://开头）", Level: LevelError})
		return
	}
	if !v.opts.CheckLinks || v.opts.LinkChecker == nil {
		return
	}

	status, err := v.opts.LinkChecker.Check(ctx, link)
	if err != nil {
		logger.IncrCounter("validate.link_check_failed")
		v.log.Warn("link check failed", logger.Fields{"link": link, "error": err.Error()})
		res.Add(Issue{Field: field, Issue: "无法验证链接可访问性: " + truncate(err.Error(), 50), Level: LevelInfo})
		return
	}
	if status >= 400 {
		res.Add(Issue{Field: field, Issue: fmt.Sprintf("链接无法访问 (HTTP %d)", status), Level: LevelWarning})
	}
}

// checkTimeline reports unparseable deadlines, backwards steps and empty
// comments. An unparseable entry is left out of the ordering comparison.
func checkTimeline(prefix string, timeline []activity.TimelineEntry, res *Result) {
	var prev time.Time
	havePrev := false

	for i, entry := range timeline {
		field := fmt.Sprintf("%s[%d]", prefix, i)

		t, err := activity.ParseDeadline(entry.Deadline)
		if err != nil {
			res.Add(Issue{
				Field:      field + ".deadline",
				Issue:      fmt.Sprintf("时间格式不正确: %s", entry.Deadline),
				Level:      LevelError,
				Suggestion: "请使用ISO 8601格式: YYYY-MM-DDTHH:mm:ss",
			})
		} else {
			if havePrev && t.Before(prev) {
				res.Add(Issue{
					Field: field + ".deadline",
					Issue: "时间顺序不正确（当前时间早于前一个时间）",
					Level: LevelWarning,
				})
			}
			prev, havePrev = t, true
		}

		if strings.TrimSpace(entry.Comment) == "" {
			res.Add(Issue{Field: field + ".comment", Issue: "时间说明不能为空", Level: LevelWarning})
		}
	}
}

func (v *Validator) checkTags(rec *activity.Record, res *Result) {
	if len(rec.Tags) == 0 {
		res.Add(Issue{
			Field:      "tags",
			Issue:      "未添加任何标签",
			Level:      LevelInfo,
			Suggestion: "建议添加3-5个相关标签",
		})
		return
	}

	for i, tag := range rec.Tags {
		if v.corpus.HasTag(tag) {
			continue
		}
		similar := SimilarTags(tag, v.vocab, v.opts.SimilarityThreshold)
		if len(similar) == 0 {
			continue
		}
		res.Add(Issue{
			Field:      fmt.Sprintf("tags[%d]", i),
			Issue:      fmt.Sprintf("标签\"%s\"与现有标签相似", tag),
			Level:      LevelInfo,
			Suggestion: "使用现有标签: " + strings.Join(similar, ", "),
		})
	}
}

func categoryList() string {
	names := make([]string, len(activity.Categories))
	for i, c := range activity.Categories {
		names[i] = string(c)
	}
	return "可选分类: " + strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
