package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"prism-cli/internal/message"

	"github.com/mattn/go-runewidth"
)

// BlockRenderer 渲染一种 MediaBlock。返回 nil 表示该块当前不可渲染，
// 整块静默跳过——载荷形状不符不是错误，周围的段照常渲染。
type BlockRenderer interface {
	Type() message.BlockType
	Render(block message.MediaBlock, width int) []Line
}

// Registry 按块类型分发渲染器。未注册的类型同样按“不可渲染”跳过。
type Registry struct {
	renderers map[message.BlockType]BlockRenderer
}

// NewRegistry 创建带内置渲染器的注册表。
func NewRegistry() *Registry {
	r := &Registry{renderers: map[message.BlockType]BlockRenderer{}}
	for _, br := range defaultBlockRenderers() {
		r.renderers[br.Type()] = br
	}
	return r
}

// Register 覆盖或新增一种块类型的渲染器。
func (r *Registry) Register(br BlockRenderer) {
	if br == nil {
		return
	}
	r.renderers[br.Type()] = br
}

// Render 渲染单个媒体块；不可渲染时返回 nil。
func (r *Registry) Render(block message.MediaBlock, width int) []Line {
	br, ok := r.renderers[block.Type]
	if !ok {
		return nil
	}
	return br.Render(block, width)
}

func defaultBlockRenderers() []BlockRenderer {
	return []BlockRenderer{
		textBlockRenderer{},
		codeBlockRenderer{},
		mermaidBlockRenderer{},
		commandExecutionRenderer{},
		errorBlockRenderer{},
		jsonBlockRenderer{},
		tableBlockRenderer{},
		thinkingBlockRenderer{},
	}
}

type textBlockRenderer struct{}

func (textBlockRenderer) Type() message.BlockType { return message.BlockText }

func (textBlockRenderer) Render(block message.MediaBlock, width int) []Line {
	var data message.TextData
	if !block.DecodeData(&data) || strings.TrimSpace(data.Text) == "" {
		return nil
	}
	return AssistantLines(data.Text, width)
}

type codeBlockRenderer struct{}

func (codeBlockRenderer) Type() message.BlockType { return message.BlockCode }

func (codeBlockRenderer) Render(block message.MediaBlock, width int) []Line {
	var data message.CodeData
	if !block.DecodeData(&data) || data.Code == "" {
		return nil
	}
	header := data.Language
	if header == "" {
		header = "text"
	}
	if data.Filename != "" {
		header += " · " + data.Filename
	}
	lines := []Line{StaticLine("┌ "+header, codeHeaderStyle)}
	var body []Line
	if data.Language == "bash" || data.Language == "sh" || data.Language == "shell" {
		body = highlightShellLines(data.Code)
	} else {
		for _, raw := range strings.Split(data.Code, "\n") {
			body = append(body, StaticLine(raw, codeBodyStyle))
		}
	}
	lines = append(lines, indentPreformatted(body, width)...)
	return lines
}

type mermaidBlockRenderer struct{}

func (mermaidBlockRenderer) Type() message.BlockType { return message.BlockMermaid }

func (mermaidBlockRenderer) Render(block message.MediaBlock, width int) []Line {
	var data message.MermaidData
	if !block.DecodeData(&data) || data.Source == "" {
		return nil
	}
	diagram := data.Diagram
	if diagram == "" {
		diagram = "flowchart"
	}
	lines := []Line{StaticLine("┌ mermaid · "+diagram, mermaidHeaderStyle)}
	var body []Line
	for _, raw := range strings.Split(data.Source, "\n") {
		body = append(body, StaticLine(raw, dimStyle))
	}
	lines = append(lines, indentPreformatted(body, width)...)
	return lines
}

type commandExecutionRenderer struct{}

func (commandExecutionRenderer) Type() message.BlockType { return message.BlockCommandExecution }

func (commandExecutionRenderer) Render(block message.MediaBlock, width int) []Line {
	var data message.CommandExecutionData
	if !block.DecodeData(&data) {
		return nil
	}
	lines := []Line{}
	if data.Command != "" {
		lines = append(lines, Line{Spans: []Span{
			{Text: "❯ ", Style: commandStyle},
			{Text: data.Command},
		}})
	}
	switch {
	case data.Running:
		lines = append(lines, StaticLine("  running…", dimStyle))
	case data.Output != "":
		var body []Line
		for _, raw := range strings.Split(strings.TrimRight(data.Output, "\n"), "\n") {
			body = append(body, StaticLine(raw, dimStyle))
		}
		lines = append(lines, indentPreformatted(body, width)...)
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}

type errorBlockRenderer struct{}

func (errorBlockRenderer) Type() message.BlockType { return message.BlockError }

func (errorBlockRenderer) Render(block message.MediaBlock, width int) []Line {
	var data message.ErrorData
	if !block.DecodeData(&data) || strings.TrimSpace(data.Message) == "" {
		return nil
	}
	out := []Line{}
	for _, raw := range wrapText("error: "+data.Message, contentWidth(width)) {
		out = append(out, StaticLine(raw, errorStyle))
	}
	return out
}

type jsonBlockRenderer struct{}

func (jsonBlockRenderer) Type() message.BlockType { return message.BlockJSON }

func (jsonBlockRenderer) Render(block message.MediaBlock, width int) []Line {
	if len(block.Data) == 0 {
		return nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, block.Data, "", "  "); err != nil {
		return nil
	}
	lines := []Line{StaticLine("┌ json", codeHeaderStyle)}
	var body []Line
	for _, raw := range strings.Split(pretty.String(), "\n") {
		body = append(body, StaticLine(raw, codeBodyStyle))
	}
	lines = append(lines, indentPreformatted(body, width)...)
	return lines
}

type tableBlockRenderer struct{}

func (tableBlockRenderer) Type() message.BlockType { return message.BlockTable }

func (tableBlockRenderer) Render(block message.MediaBlock, width int) []Line {
	var data message.TableData
	if !block.DecodeData(&data) || len(data.Rows) == 0 {
		return nil
	}
	widths := columnWidths(data)
	lines := []Line{}
	if len(data.Headers) > 0 {
		lines = append(lines, StaticLine(formatRow(data.Headers, widths), tableHeaderStyle))
	}
	for _, row := range data.Rows {
		lines = append(lines, StaticLine(formatRow(row, widths), codeBodyStyle))
	}
	return indentPreformatted(lines, width)
}

type thinkingBlockRenderer struct{}

func (thinkingBlockRenderer) Type() message.BlockType { return message.BlockThinking }

func (thinkingBlockRenderer) Render(block message.MediaBlock, width int) []Line {
	var data message.TextData
	if !block.DecodeData(&data) || strings.TrimSpace(data.Text) == "" {
		return nil
	}
	out := []Line{}
	for _, raw := range wrapText(data.Text, contentWidth(width)) {
		out = append(out, StaticLine(raw, thinkingStyle))
	}
	return out
}

// indentPreformatted 给预格式化内容统一加两格缩进并按宽度硬切。
func indentPreformatted(lines []Line, width int) []Line {
	wrapWidth := contentWidth(width)
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		text := ""
		for _, sp := range line.Spans {
			text += sp.Text
		}
		if len(line.Spans) <= 1 {
			style := dimStyle
			if len(line.Spans) == 1 {
				style = line.Spans[0].Style
			}
			for _, piece := range wrapPreserveSpaces(text, wrapWidth) {
				out = append(out, Line{Spans: []Span{{Text: "  "}, {Text: piece, Style: style}}})
			}
			continue
		}
		// 多 Span 行（高亮结果）不再二次切分，保持样式边界。
		spans := append([]Span{{Text: "  "}}, line.Spans...)
		out = append(out, Line{Spans: spans})
	}
	return out
}

func contentWidth(width int) int {
	w := width - 2
	if w < 1 {
		return width
	}
	return w
}

func columnWidths(data message.TableData) []int {
	cols := len(data.Headers)
	for _, row := range data.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(data.Headers)
	for _, row := range data.Rows {
		measure(row)
	}
	return widths
}

func formatRow(row []string, widths []int) string {
	parts := make([]string, 0, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts = append(parts, runewidth.FillRight(cell, w))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
