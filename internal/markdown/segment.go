package markdown

import (
	"regexp"
	"sort"
	"strings"
)

type SegmentType string

const (
	SegmentText        SegmentType = "text"
	SegmentBlock       SegmentType = "block"
	SegmentCode        SegmentType = "code"
	SegmentMermaid     SegmentType = "mermaid"
	SegmentCommandExec SegmentType = "command-exec"
)

// Segment 是消息文本的一个有类型切片。同一条消息的所有 Segment 按起始偏移
// 严格递增、互不重叠，拼接后（允许边界去空白）还原原文。
type Segment struct {
	Type    SegmentType
	Content string
	// BlockIndex 仅对 SegmentBlock 有效：指向按文档顺序检出的命令结果列表。
	BlockIndex int
	Language   string
	Filename   string
	Code       string
	// Diagram 仅对 SegmentMermaid 有效：根据图源首个非空行推断的图类型。
	Diagram string

	Start int
	End   int
}

var (
	commandResultRe = regexp.MustCompile(`(?ms)^\[command-result\][ \t]*\n(.*?)^\[/command-result\][ \t]*$`)
	mermaidFenceRe  = regexp.MustCompile("(?ms)^```mermaid[ \t]*\n(.*?)^```[ \t]*$")
	codeFenceRe     = regexp.MustCompile("(?ms)^```([A-Za-z0-9+_.#-]*)(?:[ \t]+([^\n]+?))?[ \t]*\n(.*?)^```[ \t]*$")
)

// reservedTags 列出由专属路径或上游分类器独占处理的语言标签；
// 通用代码围栏扫描会跳过这些标签，避免重复计入。
var reservedTags = map[string]bool{
	"mermaid": true,
	"command": true,
	"json":    true,
	"chart":   true,
}

type fenceMatch struct {
	start, end int
	priority   int
	seg        Segment
}

// Scan 将整段文本切分为有序 Segment 列表，覆盖 [0, len(text)) 恰好一次。
// 未闭合的围栏不产生匹配，其内容自然落入 text 段——静默降级而非报错。
func Scan(text string) []Segment {
	var matches []fenceMatch

	for _, m := range commandResultRe.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, fenceMatch{
			start:    m[0],
			end:      m[1],
			priority: 0,
			seg: Segment{
				Type:    SegmentBlock,
				Content: strings.TrimSpace(text[m[2]:m[3]]),
			},
		})
	}

	for _, m := range mermaidFenceRe.FindAllStringSubmatchIndex(text, -1) {
		source := strings.TrimSpace(text[m[2]:m[3]])
		matches = append(matches, fenceMatch{
			start:    m[0],
			end:      m[1],
			priority: 1,
			seg: Segment{
				Type:    SegmentMermaid,
				Code:    source,
				Diagram: DiagramType(source),
			},
		})
	}

	for _, m := range codeFenceRe.FindAllStringSubmatchIndex(text, -1) {
		lang := strings.ToLower(text[m[2]:m[3]])
		if reservedTags[lang] {
			continue
		}
		if lang == "" {
			lang = "text"
		}
		filename := ""
		if m[4] >= 0 {
			filename = strings.TrimSpace(text[m[4]:m[5]])
		}
		matches = append(matches, fenceMatch{
			start:    m[0],
			end:      m[1],
			priority: 2,
			seg: Segment{
				Type:     SegmentCode,
				Language: lang,
				Filename: filename,
				Code:     strings.TrimSpace(text[m[6]:m[7]]),
			},
		})
	}

	sort.SliceStable(matches, func(i, k int) bool {
		if matches[i].start != matches[k].start {
			return matches[i].start < matches[k].start
		}
		return matches[i].priority < matches[k].priority
	})

	var segs []Segment
	pos := 0
	blockOrdinal := 0
	for _, m := range matches {
		// 重叠匹配按优先级丢弃靠后的一个（命令结果 > mermaid > 通用代码）。
		if m.start < pos {
			continue
		}
		if gap := strings.TrimSpace(text[pos:m.start]); gap != "" {
			segs = append(segs, Segment{Type: SegmentText, Content: gap, Start: pos, End: m.start})
		}
		seg := m.seg
		seg.Start = m.start
		seg.End = m.end
		if seg.Type == SegmentBlock {
			seg.BlockIndex = blockOrdinal
			blockOrdinal++
		}
		segs = append(segs, seg)
		pos = m.end
	}
	if gap := strings.TrimSpace(text[pos:]); gap != "" {
		segs = append(segs, Segment{Type: SegmentText, Content: gap, Start: pos, End: len(text)})
	}
	return segs
}

// HasRichBlocks 报告文本中是否存在至少一个围栏块（代码 / 图 / 命令结果）。
func HasRichBlocks(segs []Segment) bool {
	for _, s := range segs {
		if s.Type != SegmentText {
			return true
		}
	}
	return false
}

// DiagramType 根据 mermaid 图源的首个非空行推断图类型。
func DiagramType(source string) string {
	for _, line := range strings.Split(source, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		switch {
		case strings.HasPrefix(t, "sequenceDiagram"):
			return "sequence"
		case strings.HasPrefix(t, "classDiagram"):
			return "class"
		case strings.HasPrefix(t, "stateDiagram"):
			return "state"
		case strings.HasPrefix(t, "erDiagram"):
			return "er"
		case strings.HasPrefix(t, "gantt"):
			return "gantt"
		case strings.HasPrefix(t, "pie"):
			return "pie"
		}
		break
	}
	return "flowchart"
}
