package stream

import (
	"prism-cli/internal/markdown"
	"prism-cli/internal/message"
)

// Promote 观察流式文本，把已完整闭合的围栏（及其之前的叙述散文）提升为
// 媒体块，返回新增块与推进后的已处理前缀长度。processed 之前的文本视为
// 已提升，不会重复产出。没有新的闭合围栏时返回 (nil, processed)。
//
// 未闭合的围栏不产生 Segment，因此尾部仍在增长的内容自然留在余量里，
// 由揭示路径继续显示。
func Promote(text string, processed int) ([]message.MediaBlock, int) {
	if processed < 0 {
		processed = 0
	}
	segs := markdown.Scan(text)

	last := -1
	for i, s := range segs {
		if s.Type != markdown.SegmentText {
			last = i
		}
	}
	if last < 0 || segs[last].End <= processed {
		return nil, processed
	}

	var blocks []message.MediaBlock
	for _, s := range segs[:last+1] {
		if s.Start < processed {
			continue
		}
		if b, ok := blockForSegment(s); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks, segs[last].End
}

func blockForSegment(s markdown.Segment) (message.MediaBlock, bool) {
	switch s.Type {
	case markdown.SegmentText:
		return message.NewBlock(message.BlockText, message.TextData{Text: s.Content}), true
	case markdown.SegmentCode:
		return message.NewBlock(message.BlockCode, message.CodeData{
			Language: s.Language,
			Filename: s.Filename,
			Code:     s.Code,
		}), true
	case markdown.SegmentMermaid:
		return message.NewBlock(message.BlockMermaid, message.MermaidData{
			Source:  s.Code,
			Diagram: s.Diagram,
		}), true
	case markdown.SegmentBlock:
		return message.NewBlock(message.BlockCommandExecution, message.CommandExecutionData{
			Output: s.Content,
		}), true
	default:
		return message.MediaBlock{}, false
	}
}
