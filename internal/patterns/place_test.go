package patterns

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractPlace(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"place followed by date", "开源之夏，地点：中国，上海，2025年6月4日 09:00-18:00", "中国，上海"},
		{"address label", "地址：北京市海淀区中关村大街27号\n时间：周六", "北京市海淀区中关村大街27号"},
		{"venue label", "举办地点：杭州国际博览中心。欢迎参加", "杭州国际博览中心"},
		{"latin label", "Location: Moscone Center, San Francisco", "Moscone Center, San Francisco"},
		{"pin emoji", "📍 深圳湾科技生态园 | 报名链接", "深圳湾科技生态园"},
		{"parking noise", "地点：上海市徐汇区漕溪北路88号，停车15元/小时，地铁1号线", "上海市徐汇区漕溪北路88号"},
		{"metro noise", "地点：成都天府软件园E区，乘坐地铁1号线到天府五街站", "成都天府软件园E区"},
		{"recommendation", "地点：南京大学仙林校区推荐乘坐地铁2号线", "南京大学仙林校区"},
		{"call to action", "地点：西安交通大学创新港点击报名参加", "西安交通大学创新港"},
		{"trailing welcome", "地点：上海市浦东新区张江路88号，欢迎大家参加", "上海市浦东新区张江路88号"},
		{"trailing signup", "地点：深圳大学南校区，报名请扫码", "深圳大学南校区"},
		{"label inside a word", "Workplace: Google office", ""},
		{"too short", "地点：线上", ""},
		{"digits only", "地点：12345", ""},
		{"no label", "欢迎参加本次活动", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlace(tt.text); got != tt.expected {
				t.Errorf("ExtractPlace(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractPlaceTruncates(t *testing.T) {
	text := "地点：" + strings.Repeat("很长的地址", 30)
	got := ExtractPlace(text)
	if n := utf8.RuneCountInString(got); n != maxPlaceLength {
		t.Errorf("expected %d characters, got %d", maxPlaceLength, n)
	}
}
