package message

import (
	"encoding/json"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// BlockType 标识一个已分类内容块的种类。上游管线负责分类；渲染侧只读。
type BlockType string

const (
	BlockCommandExecution  BlockType = "command-execution"
	BlockCommand           BlockType = "command"
	BlockCode              BlockType = "code"
	BlockFile              BlockType = "file"
	BlockImage             BlockType = "image"
	BlockError             BlockType = "error"
	BlockScreenshot        BlockType = "screenshot"
	BlockThinking          BlockType = "thinking"
	BlockJSON              BlockType = "json"
	BlockChart             BlockType = "chart"
	BlockTable             BlockType = "table"
	BlockDesktopTool       BlockType = "desktop-tool"
	BlockCRUD              BlockType = "crud"
	BlockMermaid           BlockType = "mermaid"
	BlockText              BlockType = "text"
	BlockSessionSuggestion BlockType = "session-suggestion"
)

// MediaBlock 是上游已完成分类的内容单元，ID 在单条消息内稳定且唯一。
// Data 的结构由 Type 决定；渲染器解码失败视为“当前不可渲染”，整块跳过。
type MediaBlock struct {
	ID      string          `json:"id"`
	Type    BlockType       `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Focused bool            `json:"focused,omitempty"`
}

// CodeData 是 code 块的载荷。
type CodeData struct {
	Language string `json:"language,omitempty"`
	Filename string `json:"filename,omitempty"`
	Code     string `json:"code"`
}

// CommandExecutionData 是 command-execution 块的载荷。
// Running 表示命令尚未返回结果（占位块）。
type CommandExecutionData struct {
	Command  string `json:"command"`
	Output   string `json:"output,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	Running  bool   `json:"running,omitempty"`
}

// MermaidData 是 mermaid 块的载荷。Diagram 为根据首行推断的图类型。
type MermaidData struct {
	Source  string `json:"source"`
	Diagram string `json:"diagram,omitempty"`
}

// TextData 是 text 块的载荷（交错叙述段落）。
type TextData struct {
	Text string `json:"text"`
}

// ErrorData 是 error 块的载荷。
type ErrorData struct {
	Message string `json:"message"`
}

// TableData 是 table 块的载荷。
type TableData struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	Mime string `json:"mime,omitempty"`
}

// Message 是会话的基本单元。Content 在流式结束后是权威且不可变的文本；
// StreamingText/ProcessedTextLength 仅在流式期间有意义。
type Message struct {
	ID          string
	Role        Role
	Content     string
	MediaBlocks []MediaBlock
	IntroText   string
	Attachments []Attachment

	// StreamingText 是流式期间累积的原始文本，是 Content 的前驱。
	StreamingText string
	// ProcessedTextLength 标记 StreamingText 中已被提升为 MediaBlock 的前缀长度。
	ProcessedTextLength int
}

func NewUser(content string) Message {
	return Message{ID: uuid.NewString(), Role: RoleUser, Content: content}
}

func NewAssistant() Message {
	return Message{ID: uuid.NewString(), Role: RoleAssistant}
}

// NewBlock 创建一个带稳定 ID 的 MediaBlock，payload 编码失败时 Data 为空，
// 渲染侧按“不可渲染”处理。
func NewBlock(typ BlockType, payload any) MediaBlock {
	b := MediaBlock{ID: uuid.NewString(), Type: typ}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			b.Data = raw
		}
	}
	return b
}

// DecodeData 将块载荷解码到 out，返回是否成功。
func (b MediaBlock) DecodeData(out any) bool {
	if len(b.Data) == 0 {
		return false
	}
	return json.Unmarshal(b.Data, out) == nil
}
