package render

import (
	"strings"

	"prism-cli/internal/compose"
	"prism-cli/internal/markdown"
	"prism-cli/internal/message"
)

// Transcript 维护会话条目的渲染缓存。每次 Sync 逐条经过备忘门：
// 快照等值（含流式→终态抑制规则）的条目直接复用缓存行，避免任何可见闪烁。
type Transcript struct {
	width    int
	registry *Registry
	entries  []cachedEntry
}

type cachedEntry struct {
	snap  compose.Entry
	lines []Line
}

func NewTranscript(width int, registry *Registry) *Transcript {
	if width <= 0 {
		width = 80
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Transcript{width: width, registry: registry}
}

// SetWidth 更新渲染宽度并失效全部缓存。
func (t *Transcript) SetWidth(width int) {
	if width > 0 && width != t.width {
		t.width = width
		t.entries = nil
	}
}

// Reset 清空全部条目与缓存。
func (t *Transcript) Reset() {
	t.entries = nil
}

// Sync 用当前消息列表刷新缓存。streamingID 标记仍在流式的消息；
// visible 返回该消息当前已揭示的文本前缀。
func (t *Transcript) Sync(msgs []message.Message, streamingID string, visible func(id string) string) {
	out := make([]cachedEntry, 0, len(msgs))
	for i, msg := range msgs {
		next := compose.Entry{Msg: msg, Index: i, IsStreaming: msg.ID == streamingID && streamingID != ""}
		if i < len(t.entries) && compose.ShouldSkipRerender(t.entries[i].snap, next) {
			kept := t.entries[i]
			kept.snap = next
			out = append(out, kept)
			continue
		}
		vis := ""
		if next.IsStreaming && visible != nil {
			vis = visible(msg.ID)
		}
		out = append(out, cachedEntry{snap: next, lines: t.renderEntry(next, vis)})
	}
	t.entries = out
}

// Lines 返回整个会话的渲染行，条目之间以空行分隔。
func (t *Transcript) Lines() []Line {
	var lines []Line
	for _, e := range t.entries {
		if len(e.lines) == 0 {
			continue
		}
		lines = append(lines, e.lines...)
		if last := e.lines[len(e.lines)-1]; len(last.Spans) > 0 {
			lines = append(lines, Line{})
		}
	}
	return lines
}

// String 渲染为终端字符串（viewport 内容）。
func (t *Transcript) String() string {
	return strings.Join(LinesToStrings(t.Lines()), "\n")
}

func (t *Transcript) renderEntry(e compose.Entry, visible string) []Line {
	switch e.Msg.Role {
	case message.RoleUser:
		return UserLines(e.Msg.Content, t.width)
	case message.RoleAssistant:
		return t.renderAssistant(e, visible)
	default:
		return SystemLines(e.Msg.Content, t.width)
	}
}

func (t *Transcript) renderAssistant(e compose.Entry, visible string) []Line {
	plan := compose.Compose(e.Msg, e.IsStreaming)
	switch plan.Strategy {
	case compose.StrategyStreaming:
		lines := t.renderBlockList(plan.Blocks)
		if visible != "" {
			lines = joinWithGap(lines, AssistantLines(visible, t.width))
		}
		return lines

	case compose.StrategyMediaBlocks:
		var lines []Line
		if plan.Intro != "" {
			lines = AssistantLines(plan.Intro, t.width)
		}
		lines = joinWithGap(lines, t.renderBlockList(plan.Blocks))
		if plan.Outro != "" {
			lines = joinWithGap(lines, AssistantLines(plan.Outro, t.width))
		}
		return lines

	case compose.StrategySegments:
		var lines []Line
		for _, seg := range plan.Segments {
			lines = joinWithGap(lines, t.renderSegment(seg, e.Msg.MediaBlocks))
		}
		return lines

	case compose.StrategyCommandPhrases:
		var lines []Line
		for _, c := range plan.Commands {
			var part []Line
			if c.Type == markdown.SegmentCommandExec {
				part = t.registry.Render(compose.CommandBlockFor(e.Msg.MediaBlocks, c.Command), t.width)
			} else {
				part = AssistantLines(c.Content, t.width)
			}
			lines = joinWithGap(lines, part)
		}
		return lines

	default:
		if plan.Text == "" {
			return nil
		}
		return AssistantLines(plan.Text, t.width)
	}
}

func (t *Transcript) renderSegment(seg markdown.Segment, blocks []message.MediaBlock) []Line {
	switch seg.Type {
	case markdown.SegmentText:
		return AssistantLines(seg.Content, t.width)
	case markdown.SegmentCode:
		return t.registry.Render(message.NewBlock(message.BlockCode, message.CodeData{
			Language: seg.Language,
			Filename: seg.Filename,
			Code:     seg.Code,
		}), t.width)
	case markdown.SegmentMermaid:
		return t.registry.Render(message.NewBlock(message.BlockMermaid, message.MermaidData{
			Source:  seg.Code,
			Diagram: seg.Diagram,
		}), t.width)
	case markdown.SegmentBlock:
		// 命令结果围栏：优先用上游已分类的同序媒体块，否则就地合成。
		if b, ok := commandBlockAt(blocks, seg.BlockIndex); ok {
			return t.registry.Render(b, t.width)
		}
		return t.registry.Render(message.NewBlock(message.BlockCommandExecution, message.CommandExecutionData{
			Output: seg.Content,
		}), t.width)
	default:
		return nil
	}
}

func (t *Transcript) renderBlockList(blocks []message.MediaBlock) []Line {
	var lines []Line
	for _, b := range blocks {
		lines = joinWithGap(lines, t.registry.Render(b, t.width))
	}
	return lines
}

// commandBlockAt 返回媒体块列表中第 idx 个命令执行块。
func commandBlockAt(blocks []message.MediaBlock, idx int) (message.MediaBlock, bool) {
	n := 0
	for _, b := range blocks {
		if b.Type != message.BlockCommandExecution {
			continue
		}
		if n == idx {
			return b, true
		}
		n++
	}
	return message.MediaBlock{}, false
}

func joinWithGap(a, b []Line) []Line {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := append(a, Line{})
	return append(out, b...)
}
