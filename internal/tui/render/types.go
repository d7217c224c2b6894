package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Span 表示一段文本及其样式。
type Span struct {
	Text  string
	Style lipgloss.Style
}

// Line 由多个 Span 组成，可选整体样式。
type Line struct {
	Spans []Span
	Style lipgloss.Style
}

// StaticLine 构造单 Span 行。
func StaticLine(text string, style lipgloss.Style) Line {
	return Line{Spans: []Span{{Text: text, Style: style}}}
}

// LinesToStrings 将样式化的行转换为字符串列表。
func LinesToStrings(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		segments := make([]string, 0, len(line.Spans))
		for _, sp := range line.Spans {
			segments = append(segments, sp.Style.Render(sp.Text))
		}
		text := strings.Join(segments, "")
		text = line.Style.Render(text)
		out = append(out, text)
	}
	return out
}

// PrefixLines 给第一行加前缀 Span，其余行加缩进 Span。
func PrefixLines(lines []Line, first Span, rest Span) []Line {
	out := make([]Line, 0, len(lines))
	for i, line := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		spans := make([]Span, 0, len(line.Spans)+1)
		spans = append(spans, prefix)
		spans = append(spans, line.Spans...)
		out = append(out, Line{Spans: spans, Style: line.Style})
	}
	return out
}
