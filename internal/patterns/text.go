package patterns

import (
	"regexp"
	"strings"
)

// DescriptionPlaceholder is returned by ExtractDescription when the text has
// no usable lines.
const DescriptionPlaceholder = "活动信息"

const (
	descriptionSoftLimit = 200
	descriptionHardLimit = 300
)

// ExtractDescription joins the non-empty lines of text that are not time or
// place labels, stopping once more than 200 characters are collected, and
// returns at most 300 characters.
func ExtractDescription(text string) string {
	var b strings.Builder
	n := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "时间") || strings.HasPrefix(line, "地点") {
			continue
		}
		b.WriteString(line)
		b.WriteString(" ")
		n += len([]rune(line)) + 1
		if n > descriptionSoftLimit {
			break
		}
	}
	if n == 0 {
		return DescriptionPlaceholder
	}
	runes := []rune(b.String())
	if len(runes) > descriptionHardLimit {
		runes = runes[:descriptionHardLimit]
	}
	return string(runes)
}

// MaxTags caps the number of tags any extractor or record carries
const MaxTags = 5

type tagRule struct {
	tag      string
	keywords []string
}

// tagRules is ordered; extracted tags follow this order
var tagRules = []tagRule{
	{"开源", []string{"开源", "open source", "opensource"}},
	{"校园", []string{"大学", "高校", "校园", "university", "campus"}},
	{"会议", []string{"会议", "conference", "summit"}},
	{"竞赛", []string{"竞赛", "competition", "比赛", "contest"}},
	{"讲座", []string{"讲座", "talk", "seminar"}},
	{"工作坊", []string{"工作坊", "workshop", "研讨"}},
}

// ExtractTags returns the tags whose keywords occur in the title or text,
// case-insensitively, in table order.
func ExtractTags(title, text string) []string {
	combined := strings.ToLower(title + " " + text)
	tags := make([]string, 0, len(tagRules))
	for _, rule := range tagRules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				tags = append(tags, rule.tag)
				break
			}
		}
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

var linkPattern = regexp.MustCompile(`https?://[^\s<>"'，。；）)\]]+`)

// ExtractLinks returns the distinct http(s) URLs in text in first-seen order
func ExtractLinks(text string) []string {
	var links []string
	seen := make(map[string]bool)
	for _, m := range linkPattern.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:!?")
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		links = append(links, m)
	}
	return links
}
