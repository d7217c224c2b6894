package markdown

import (
	"regexp"
	"strings"
)

// CommandSegment 与 Segment 遵循同样的覆盖/有序约定，但只针对命令叙述模板。
// 该路径是 Scan 未发现任何围栏块时的兜底，用于把“我将执行 `xxx`”这类
// 叙述从周围散文中分离出来。
type CommandSegment struct {
	Type    SegmentType
	Content string
	Command string
}

// 固定叙述模板集合：I will (now) execute (the command) `cmd` 与
// Executing (command|the command): `cmd`。大小写不敏感，从左到右非重叠匹配。
var commandPhraseRe = regexp.MustCompile("(?i)\\b(?:i\\s+will\\s+(?:now\\s+)?execute(?:\\s+the\\s+command)?|executing(?:\\s+(?:the\\s+)?command)?):?\\s*`([^`\n]+)`")

// ExtractCommandPhrases 扫描命令叙述并返回覆盖整段输入的 CommandSegment 列表。
// 未命中任何模板时返回单个 text 段（内容为去空白后的输入）。
func ExtractCommandPhrases(text string) []CommandSegment {
	matches := commandPhraseRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []CommandSegment{{Type: SegmentText, Content: strings.TrimSpace(text)}}
	}

	var segs []CommandSegment
	pos := 0
	for _, m := range matches {
		if gap := strings.TrimSpace(text[pos:m[0]]); gap != "" {
			segs = append(segs, CommandSegment{Type: SegmentText, Content: gap})
		}
		segs = append(segs, CommandSegment{
			Type:    SegmentCommandExec,
			Content: strings.TrimSpace(text[m[0]:m[1]]),
			Command: strings.TrimSpace(text[m[2]:m[3]]),
		})
		pos = m[1]
	}
	if gap := strings.TrimSpace(text[pos:]); gap != "" {
		segs = append(segs, CommandSegment{Type: SegmentText, Content: gap})
	}
	return segs
}
