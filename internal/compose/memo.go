package compose

import "prism-cli/internal/message"

// Entry 是备忘等值比较所见的会话条目快照。
type Entry struct {
	Msg         message.Message
	Index       int
	IsStreaming bool
}

// ShouldSkipRerender 决定一个会话条目是否可以跳过重渲染。
//
// 流式进行中永远重渲染；流式翻转为终态的一瞬，若终态文本与流式期间
// 显示的文本一致则跳过——这是抑制“流式→终态”闪烁的关键规则：可见
// 文本没变，底层表示从原始流切换为结构化内容不应引起任何重绘。
// 两侧都稳定时，按内容、角色、媒体块与附件的引用同一性、introText
// 与条目下标做等值判断。纯函数，无副作用。
func ShouldSkipRerender(prev, next Entry) bool {
	if next.IsStreaming {
		return false
	}
	if prev.IsStreaming && !next.IsStreaming {
		shown := prev.Msg.StreamingText
		if shown == "" {
			shown = prev.Msg.Content
		}
		return shown == next.Msg.Content
	}
	return prev.Msg.Content == next.Msg.Content &&
		prev.Msg.Role == next.Msg.Role &&
		sameBlocks(prev.Msg.MediaBlocks, next.Msg.MediaBlocks) &&
		prev.Msg.IntroText == next.Msg.IntroText &&
		sameAttachments(prev.Msg.Attachments, next.Msg.Attachments) &&
		prev.Index == next.Index
}

// sameBlocks 比较切片同一性（底层数组与长度），不做深比较。
func sameBlocks(a, b []message.MediaBlock) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

func sameAttachments(a, b []message.Attachment) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
