package compose

import (
	"strings"

	"prism-cli/internal/markdown"
	"prism-cli/internal/message"
)

// Strategy 是一条消息的渲染策略，在每次渲染时根据消息形态确定性选出，
// 不跨渲染缓存（IsStreaming 随时可能翻转）。
type Strategy int

const (
	// StrategyStreaming 直接对流式文本做逐帧揭示。
	StrategyStreaming Strategy = iota
	// StrategyMediaBlocks 按上游给定顺序渲染已分类媒体块。
	StrategyMediaBlocks
	// StrategySegments 按分段器的有序 Segment 列表交错渲染。
	StrategySegments
	// StrategyCommandPhrases 按命令叙述兜底路径渲染。
	StrategyCommandPhrases
	// StrategyPlainText 整段散文兜底。
	StrategyPlainText
)

// Plan 是一次渲染的完整输入：策略加上该策略需要的数据。
type Plan struct {
	Strategy Strategy

	// RevealText 是流式路径要揭示的文本（已分类块之后的未处理余量）。
	RevealText string
	Blocks     []message.MediaBlock
	Intro      string
	// Outro 是已分类块之后仍属于消息正文的余量散文。流式结束时
	// ProcessedTextLength 可能停在最后一个闭合围栏上，尾部散文只存在于
	// 原文里；丢掉它就违反“块 + 余量可还原全文”的约定。
	Outro    string
	Segments []markdown.Segment
	Commands []markdown.CommandSegment
	Text     string
}

// Compose 为一条消息选定渲染策略。streaming 为真时走揭示路径；
// 若流式中途已有部分分类结果，只揭示 ProcessedTextLength 之后的余量，
// 避免重播已被提升为媒体块的文本。
func Compose(msg message.Message, streaming bool) Plan {
	if streaming {
		target := msg.StreamingText
		if target == "" {
			target = msg.Content
		}
		plan := Plan{Strategy: StrategyStreaming, RevealText: target}
		if len(msg.MediaBlocks) > 0 {
			plan.Blocks = msg.MediaBlocks
			processed := msg.ProcessedTextLength
			if processed < 0 {
				processed = 0
			}
			if processed > len(target) {
				processed = len(target)
			}
			plan.RevealText = strings.TrimLeft(target[processed:], "\n")
		}
		return plan
	}

	if len(msg.MediaBlocks) > 0 {
		return Plan{
			Strategy: StrategyMediaBlocks,
			Intro:    strings.TrimSpace(msg.IntroText),
			Blocks:   msg.MediaBlocks,
			Outro:    unprocessedTail(msg),
		}
	}

	text := markdown.Normalize(msg.Content)

	segs := markdown.Scan(text)
	if markdown.HasRichBlocks(segs) {
		return Plan{Strategy: StrategySegments, Segments: segs}
	}

	cmds := markdown.ExtractCommandPhrases(text)
	if hasCommandSegment(cmds) {
		return Plan{
			Strategy: StrategyCommandPhrases,
			Commands: dedupeCommands(cmds, map[string]bool{}),
		}
	}

	return Plan{Strategy: StrategyPlainText, Text: strings.TrimSpace(text)}
}

// CommandBlockFor 在已分类媒体块中查找某条命令的执行结果；
// 没有结果时返回一个“执行中”占位块。
func CommandBlockFor(blocks []message.MediaBlock, command string) message.MediaBlock {
	for _, b := range blocks {
		if b.Type != message.BlockCommandExecution {
			continue
		}
		var data message.CommandExecutionData
		if b.DecodeData(&data) && data.Command == command {
			return b
		}
	}
	return message.NewBlock(message.BlockCommandExecution, message.CommandExecutionData{
		Command: command,
		Running: true,
	})
}

// unprocessedTail 返回 ProcessedTextLength 之后的正文余量。偏移量定义在
// 流式原文上，终态 Content 是其去空白版本，因此优先按原文切片。
func unprocessedTail(msg message.Message) string {
	source := msg.StreamingText
	if source == "" {
		source = msg.Content
	}
	processed := msg.ProcessedTextLength
	if processed < 0 {
		processed = 0
	}
	if processed > len(source) {
		processed = len(source)
	}
	return strings.TrimSpace(source[processed:])
}

func hasCommandSegment(cmds []markdown.CommandSegment) bool {
	for _, c := range cmds {
		if c.Type == markdown.SegmentCommandExec {
			return true
		}
	}
	return false
}

// dedupeCommands 在单次渲染遍历内按命令字符串去重：同一命令只保留第一次
// 出现的叙述段，后续重复整段跳过。seen 显式作为参数传递，作用域即一次遍历。
func dedupeCommands(cmds []markdown.CommandSegment, seen map[string]bool) []markdown.CommandSegment {
	out := make([]markdown.CommandSegment, 0, len(cmds))
	for _, c := range cmds {
		if c.Type == markdown.SegmentCommandExec {
			if seen[c.Command] {
				continue
			}
			seen[c.Command] = true
		}
		out = append(out, c)
	}
	return out
}
