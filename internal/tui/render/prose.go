package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// UserLines 渲染用户消息：前缀 ›，上下各留一空行。
func UserLines(content string, width int) []Line {
	wrapWidth := width - 2
	if wrapWidth < 1 {
		wrapWidth = width
	}
	body := plainLines(strings.TrimRight(content, "\n"), wrapWidth)
	prefixed := PrefixLines(body, Span{Text: "› ", Style: userPrefixStyle}, Span{Text: "  ", Style: userIndentStyle})
	lines := make([]Line, 0, len(prefixed)+2)
	lines = append(lines, Line{})
	lines = append(lines, prefixed...)
	lines = append(lines, Line{})
	return lines
}

// AssistantLines 渲染助手散文：前缀 •，续行缩进对齐。
func AssistantLines(content string, width int) []Line {
	wrapWidth := width - 2
	if wrapWidth < 1 {
		wrapWidth = width
	}
	body := plainLines(strings.TrimRight(content, "\n"), wrapWidth)
	prefixed := PrefixLines(body, Span{Text: "• ", Style: assistantPrefixStyle}, Span{Text: "  ", Style: assistantIndentStyle})
	if len(prefixed) == 0 {
		prefixed = []Line{{Spans: []Span{{Text: "• ", Style: assistantPrefixStyle}}}}
	}
	return prefixed
}

// SystemLines 渲染系统提示行（dim）。
func SystemLines(content string, width int) []Line {
	out := []Line{}
	for _, raw := range wrapText(content, width) {
		out = append(out, StaticLine(raw, dimStyle))
	}
	return out
}

func plainLines(content string, width int) []Line {
	lines := wrapText(content, width)
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Line{Spans: []Span{{Text: l, Style: lipgloss.Style{}}}})
	}
	return out
}
