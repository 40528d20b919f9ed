package patterns

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	minPlaceLength = 4
	maxPlaceLength = 80
)

// placePatterns capture a labelled place up to the end of its clause.
// Commas stay inside the capture ("中国，上海"); trailing noise is removed by
// placeCleanups.
var placePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:举办地点|举办地|地点|地址)[：:]\s*([^\n。；;|]+)`),
	regexp.MustCompile(`(?i)\b(?:Location|Place)[：:]\s*([^\n。；;|]+)`),
	regexp.MustCompile(`📍\s*([^\n。；;|]+)`),
}

const clauseSep = `[，,；;、]`

// placeCleanups are applied in order to a captured place
var placeCleanups = []*regexp.Regexp{
	// recommendation clause up to the next separator
	regexp.MustCompile(`推荐[^，,；;]*`),
	// transit and parking logistics
	regexp.MustCompile(clauseSep + `\s*(?:停车|地铁线路|地铁|公交车|公交|距离|附近|推荐|步行|开车|乘坐)[^，,；;]*`),
	// fares
	regexp.MustCompile(clauseSep + `\s*\d+元/小时[^，,；;]*`),
	// line numbers, bus routes, distances
	regexp.MustCompile(clauseSep + `\s*\d+(?:号线|路|米)[^，,；;]*`),
	// calls to action
	regexp.MustCompile(`点击报名.*$`),
	regexp.MustCompile(`长按.*$`),
	regexp.MustCompile(`扫描.*$`),
	regexp.MustCompile(clauseSep + `\s*(?:欢迎|报名|敬请|诚邀|期待)(?:.|\n)*$`),
	// dates and times that follow the place in the same sentence
	regexp.MustCompile(clauseSep + `?\s*\d{4}\s*(?:年|-|/|\.)\d.*$`),
	regexp.MustCompile(clauseSep + `\s*\d{1,2}[:：]\d{2}.*$`),
	regexp.MustCompile(`(?i)` + clauseSep + `\s*(?:时间|日期|time|date)[：:].*$`),
}

var trailingSeps = regexp.MustCompile(`[\s，,；;、]+$`)

// ExtractPlace returns the labelled place in text with logistics noise
// removed, or "" when no usable place is found. Results shorter than four
// characters or without any letter are dropped; longer ones are cut to 80
// characters.
func ExtractPlace(text string) string {
	for _, re := range placePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if place := cleanPlace(m[1]); place != "" {
			return place
		}
	}
	return ""
}

func cleanPlace(raw string) string {
	place := strings.TrimSpace(raw)
	for _, re := range placeCleanups {
		place = re.ReplaceAllString(place, "")
	}
	place = trailingSeps.ReplaceAllString(strings.TrimSpace(place), "")

	runes := []rune(place)
	if len(runes) < minPlaceLength || !hasLetter(runes) {
		return ""
	}
	if len(runes) > maxPlaceLength {
		place = string(runes[:maxPlaceLength])
	}
	return place
}

func hasLetter(runes []rune) bool {
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
