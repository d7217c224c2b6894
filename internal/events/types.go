package events

import (
	"time"

	"prism-cli/internal/message"
)

// Type 描述事件总线中分发的事件类型。
type Type string

const (
	// TypeStreamChunk 表示一段新的流式文本增量。
	TypeStreamChunk Type = "stream.chunk"
	// TypeBlocksPromoted 表示上游把已解析完的文本片段提升为媒体块。
	TypeBlocksPromoted Type = "stream.blocks_promoted"
	// TypeStreamFinal 表示流式结束，携带权威终态文本。
	TypeStreamFinal Type = "stream.final"
	// TypeStreamError 表示流式中断。
	TypeStreamError Type = "stream.error"
)

// StreamChunk 是一条消息的文本增量。
type StreamChunk struct {
	MessageID string
	Text      string
}

// BlocksPromoted 携带某条消息当前累计的已分类媒体块快照与已处理前缀长度。
type BlocksPromoted struct {
	MessageID           string
	Blocks              []message.MediaBlock
	ProcessedTextLength int
}

// StreamFinal 携带流式结束后的权威文本。
type StreamFinal struct {
	MessageID string
	Content   string
}

// StreamError 携带流式失败原因。
type StreamError struct {
	MessageID string
	Err       string
}

// Event 是总线上传递的唯一消息格式，Payload 的结构由 Type 决定。
type Event struct {
	Type      Type
	Timestamp time.Time
	Payload   any
}

// New 构造一个带时间戳的事件。
func New(typ Type, payload any) Event {
	return Event{Type: typ, Timestamp: time.Now(), Payload: payload}
}
