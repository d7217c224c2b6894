package render

import (
	"strings"
	"testing"

	"prism-cli/internal/message"
	"prism-cli/internal/stream"
)

func lineText(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		for _, sp := range l.Spans {
			sb.WriteString(sp.Text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestTranscriptSegmentedAssistant(t *testing.T) {
	tr := NewTranscript(80, nil)
	msg := message.Message{
		ID:      "a1",
		Role:    message.RoleAssistant,
		Content: "Let me check.\n```python\nprint(1)\n```\nDone.",
	}
	tr.Sync([]message.Message{msg}, "", nil)
	out := lineText(tr.Lines())
	for _, want := range []string{"Let me check.", "┌ python", "print(1)", "Done."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "```") {
		t.Fatalf("fence delimiters leaked into output:\n%s", out)
	}
}

func TestTranscriptStreamingShowsRevealedPrefix(t *testing.T) {
	tr := NewTranscript(80, nil)
	msg := message.Message{ID: "a1", Role: message.RoleAssistant, StreamingText: "Hello world"}
	tr.Sync([]message.Message{msg}, "a1", func(string) string { return "Hello w" })
	out := lineText(tr.Lines())
	if !strings.Contains(out, "Hello w") || strings.Contains(out, "Hello world") {
		t.Fatalf("expected only revealed prefix, got:\n%s", out)
	}
}

func TestTranscriptFlickerSuppression(t *testing.T) {
	tr := NewTranscript(80, nil)
	streaming := message.Message{ID: "a1", Role: message.RoleAssistant, StreamingText: "Hello"}
	tr.Sync([]message.Message{streaming}, "a1", func(string) string { return "Hello" })
	first := tr.entries[0].lines

	final := streaming
	final.Content = "Hello"
	tr.Sync([]message.Message{final}, "", nil)
	second := tr.entries[0].lines

	if len(first) == 0 || len(second) != len(first) || &first[0] != &second[0] {
		t.Fatalf("streaming->final with identical text must reuse cached lines")
	}

	changed := final
	changed.Content = "Hello world"
	tr.Sync([]message.Message{changed}, "", nil)
	if got := lineText(tr.entries[0].lines); !strings.Contains(got, "Hello world") {
		t.Fatalf("changed final text must re-render, got:\n%s", got)
	}
}

func TestTranscriptPromotedMessageKeepsTrailingProse(t *testing.T) {
	// 流式全程：分块提升后收尾，终态渲染必须保住最后一个围栏之后的散文。
	text := "intro\n```python\nprint(1)\n```\nDone."
	blocks, processed := stream.Promote(text, 0)
	if len(blocks) == 0 || processed >= len(text) {
		t.Fatalf("setup: promote = %d blocks, processed %d", len(blocks), processed)
	}

	msg := message.Message{
		ID:                  "a1",
		Role:                message.RoleAssistant,
		Content:             strings.TrimSpace(text),
		StreamingText:       text,
		MediaBlocks:         blocks,
		ProcessedTextLength: processed,
	}
	tr := NewTranscript(80, nil)
	tr.Sync([]message.Message{msg}, "", nil)
	out := lineText(tr.Lines())
	for _, want := range []string{"intro", "┌ python", "print(1)", "Done."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q after stream end:\n%s", want, out)
		}
	}
}

func TestTranscriptErroredMessageKeepsPartialAnswer(t *testing.T) {
	msg := message.Message{
		ID:            "a1",
		Role:          message.RoleAssistant,
		Content:       "partial answer before the line dropped",
		StreamingText: "partial answer before the line dropped",
		MediaBlocks: []message.MediaBlock{
			message.NewBlock(message.BlockText, message.TextData{Text: "partial answer before the line dropped"}),
			message.NewBlock(message.BlockError, message.ErrorData{Message: "boom"}),
		},
		ProcessedTextLength: len("partial answer before the line dropped"),
	}
	tr := NewTranscript(80, nil)
	tr.Sync([]message.Message{msg}, "", nil)
	out := lineText(tr.Lines())
	if !strings.Contains(out, "partial answer") {
		t.Fatalf("partial answer lost on error:\n%s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Fatalf("error block missing:\n%s", out)
	}
	if partial := strings.Index(out, "partial answer"); partial > strings.Index(out, "boom") {
		t.Fatalf("partial answer must precede the error:\n%s", out)
	}
}

func TestTranscriptCommandPhraseDedup(t *testing.T) {
	tr := NewTranscript(80, nil)
	msg := message.Message{
		ID:      "a1",
		Role:    message.RoleAssistant,
		Content: "I will execute `ls -la`\nand then\nI will execute `ls -la`",
	}
	tr.Sync([]message.Message{msg}, "", nil)
	out := lineText(tr.Lines())
	if got := strings.Count(out, "❯ ls -la"); got != 1 {
		t.Fatalf("expected exactly one rendered command, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "running…") {
		t.Fatalf("expected placeholder for pending command:\n%s", out)
	}
}

func TestTranscriptUnknownBlockSkipped(t *testing.T) {
	tr := NewTranscript(80, nil)
	blocks := []message.MediaBlock{
		{ID: "b1", Type: message.BlockType("session-suggestion")},
		message.NewBlock(message.BlockText, message.TextData{Text: "still here"}),
	}
	msg := message.Message{ID: "a1", Role: message.RoleAssistant, MediaBlocks: blocks}
	tr.Sync([]message.Message{msg}, "", nil)
	out := lineText(tr.Lines())
	if !strings.Contains(out, "still here") {
		t.Fatalf("surrounding blocks must still render:\n%s", out)
	}
}

func TestTranscriptWidthChangeInvalidates(t *testing.T) {
	tr := NewTranscript(80, nil)
	msg := message.Message{ID: "u1", Role: message.RoleUser, Content: "hello"}
	tr.Sync([]message.Message{msg}, "", nil)
	before := tr.entries[0].lines
	tr.SetWidth(40)
	tr.Sync([]message.Message{msg}, "", nil)
	after := tr.entries[0].lines
	if len(before) > 0 && len(after) > 0 && &before[0] == &after[0] {
		t.Fatalf("width change must invalidate the cache")
	}
}
