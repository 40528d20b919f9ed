package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const promptTextLimit = 3000

// BuildPrompt renders the extraction prompt for text. Input beyond 3000
// characters is cut.
func BuildPrompt(text string) string {
	if utf8.RuneCountInString(text) > promptTextLimit {
		text = string([]rune(text)[:promptTextLimit])
	}
	hint := strings.ToLower(activityHint(text))

	var b strings.Builder
	b.WriteString("你是一个开源活动信息提取专家。请根据以下提取的文本，解析活动信息并返回JSON格式的数据。\n\n")
	b.WriteString("## 输入文本：\n")
	b.WriteString(text)
	b.WriteString("\n\n## 任务：\n请从上述文本中提取以下信息：\n\n")
	b.WriteString("1. **title**: 活动官方名称（例如：\"开源之夏\"）\n")
	b.WriteString("2. **description**: 一句话描述活动，不超过100字\n")
	b.WriteString("3. **category**: 活动分类，必须是以下之一：\n")
	b.WriteString("   - \"conference\": 如果是学术会议、技术峰会\n")
	b.WriteString("   - \"competition\": 如果是编程竞赛、创意大赛、集训营\n")
	b.WriteString("   - \"activity\": 如果是线上讲座、workshop、meetup等\n")
	b.WriteString("4. **tags**: 活动标签数组，选择3-5个最相关的标签（字符串数组）\n")
	b.WriteString("5. **events**: 事件数组，每个事件需要以下字段：\n")
	b.WriteString("   - year: 活动年份（数字）\n")
	fmt.Fprintf(&b, "   - id: 全局唯一ID，格式: %s-yyyy（小写，字母数字和连字符）\n", hint)
	b.WriteString("   - link: 活动官方网址\n")
	b.WriteString("   - timezone: IANA时区标准名称（例如：\"Asia/Shanghai\"）\n")
	b.WriteString("   - date: 人类可读的日期范围（例如：\"2025年4月30日 - 9月30日\"）\n")
	b.WriteString("   - place: 地点信息（例如：\"中国，上海\"或\"线上\"）\n")
	b.WriteString("   - timeline: 时间线事件数组，每项包含：\n")
	b.WriteString("     * deadline: ISO 8601格式的截止时间（YYYY-MM-DDTHH:mm:ss）\n")
	b.WriteString("     * comment: 事件说明（例如：\"报名开始\"、\"提交截止\"）\n\n")
	b.WriteString("## 重要规则：\n")
	b.WriteString("- ID必须是小写字母、数字和连字符的组合\n")
	b.WriteString("- 时间必须使用ISO 8601格式: YYYY-MM-DDTHH:mm:ss\n")
	b.WriteString("- 时区必须是有效的IANA时区名称\n")
	b.WriteString("- 如果文本中没有某个字段，设置为空字符串或空数组\n")
	b.WriteString("- description字段不能超过100字\n")
	b.WriteString("- 只返回有效的JSON对象，不要其他文字\n")
	return b.String()
}

// activityHint guesses a name for the activity: the first line between 3 and
// 99 characters long, else "activity".
func activityHint(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n > 2 && n < 100 {
			return line
		}
	}
	return "activity"
}
