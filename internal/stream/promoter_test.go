package stream

import (
	"testing"

	"prism-cli/internal/message"
)

func TestPromoteClosedFence(t *testing.T) {
	text := "Here is code:\n```go\nx := 1\n```\nand more prose still streaming"
	blocks, processed := Promote(text, 0)
	if len(blocks) != 2 {
		t.Fatalf("expected intro text + code block, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Type != message.BlockText || blocks[1].Type != message.BlockCode {
		t.Fatalf("unexpected block types %q %q", blocks[0].Type, blocks[1].Type)
	}
	var code message.CodeData
	if !blocks[1].DecodeData(&code) || code.Language != "go" || code.Code != "x := 1" {
		t.Fatalf("unexpected code payload %+v", code)
	}
	remainder := text[processed:]
	if remainder != "\nand more prose still streaming" {
		t.Fatalf("unexpected remainder %q", remainder)
	}
}

func TestPromoteNothingWhileFenceOpen(t *testing.T) {
	blocks, processed := Promote("prose\n```go\nstill stream", 0)
	if blocks != nil || processed != 0 {
		t.Fatalf("open fence must not promote: %+v %d", blocks, processed)
	}
}

func TestPromoteIsIncremental(t *testing.T) {
	text := "a\n```go\nx\n```\nb\n```python\ny\n```\n"
	blocks, processed := Promote(text, 0)
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %+v", blocks)
	}
	again, next := Promote(text, processed)
	if again != nil || next != processed {
		t.Fatalf("re-promotion must be a no-op, got %+v %d", again, next)
	}
}

func TestPromoteMermaidAndCommandResult(t *testing.T) {
	text := "```mermaid\nsequenceDiagram\n```\n[command-result]\nok\n[/command-result]"
	blocks, _ := Promote(text, 0)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %+v", blocks)
	}
	var mm message.MermaidData
	if !blocks[0].DecodeData(&mm) || mm.Diagram != "sequence" {
		t.Fatalf("unexpected mermaid payload %+v", mm)
	}
	var cmd message.CommandExecutionData
	if !blocks[1].DecodeData(&cmd) || cmd.Output != "ok" {
		t.Fatalf("unexpected command payload %+v", cmd)
	}
}
