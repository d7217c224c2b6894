package markdown

import (
	"strings"
	"testing"
)

func TestScanProseCodeProse(t *testing.T) {
	segs := Scan("Let me check.\n```python\nprint(1)\n```\nDone.")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Type != SegmentText || segs[0].Content != "Let me check." {
		t.Fatalf("unexpected leading segment %+v", segs[0])
	}
	if segs[1].Type != SegmentCode || segs[1].Language != "python" || segs[1].Code != "print(1)" {
		t.Fatalf("unexpected code segment %+v", segs[1])
	}
	if segs[2].Type != SegmentText || segs[2].Content != "Done." {
		t.Fatalf("unexpected trailing segment %+v", segs[2])
	}
}

func TestScanDefaultsLanguage(t *testing.T) {
	segs := Scan("```\nhello\n```")
	if len(segs) != 1 || segs[0].Type != SegmentCode {
		t.Fatalf("expected single code segment, got %+v", segs)
	}
	if segs[0].Language != "text" {
		t.Fatalf("expected default language text, got %q", segs[0].Language)
	}
}

func TestScanFilenameAnnotation(t *testing.T) {
	segs := Scan("```go main.go\npackage main\n```")
	if len(segs) != 1 || segs[0].Type != SegmentCode {
		t.Fatalf("expected single code segment, got %+v", segs)
	}
	if segs[0].Language != "go" || segs[0].Filename != "main.go" {
		t.Fatalf("unexpected code segment %+v", segs[0])
	}
}

func TestScanTwoMermaidFences(t *testing.T) {
	text := "First:\n```mermaid\nsequenceDiagram\nA->>B: hi\n```\nthen\n```mermaid\npie\n\"a\": 1\n```\nend"
	segs := Scan(text)
	if len(segs) != 5 {
		t.Fatalf("expected 5 segments, got %d: %+v", len(segs), segs)
	}
	if segs[1].Type != SegmentMermaid || segs[1].Diagram != "sequence" {
		t.Fatalf("unexpected first mermaid segment %+v", segs[1])
	}
	if segs[3].Type != SegmentMermaid || segs[3].Diagram != "pie" {
		t.Fatalf("unexpected second mermaid segment %+v", segs[3])
	}
	if segs[0].Type != SegmentText || segs[2].Type != SegmentText || segs[4].Type != SegmentText {
		t.Fatalf("text interleave broken: %+v", segs)
	}
}

func TestScanCommandResultFence(t *testing.T) {
	text := "Ran it.\n[command-result]\ntotal 4\n-rw-r--r-- 1\n[/command-result]\nAll good."
	segs := Scan(text)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[1].Type != SegmentBlock || segs[1].BlockIndex != 0 {
		t.Fatalf("unexpected block segment %+v", segs[1])
	}
	if !strings.Contains(segs[1].Content, "total 4") {
		t.Fatalf("command output lost: %+v", segs[1])
	}
}

func TestScanReservedTagsFallThrough(t *testing.T) {
	// json/chart 由上游分类器独占，通用代码围栏扫描必须跳过；
	// 未被任何家族命中的内容降级为 text。
	segs := Scan("```json\n{\"a\":1}\n```")
	if len(segs) != 1 || segs[0].Type != SegmentText {
		t.Fatalf("expected plain text fallthrough, got %+v", segs)
	}
}

func TestScanUnterminatedFence(t *testing.T) {
	segs := Scan("Start\n```python\nprint(1)")
	if len(segs) != 1 || segs[0].Type != SegmentText {
		t.Fatalf("expected graceful fallthrough, got %+v", segs)
	}
}

func TestScanCoverageAndOrder(t *testing.T) {
	inputs := []string{
		"",
		"only prose",
		"a\n```go\nx\n```\nb\n```mermaid\ngantt\n```\nc",
		"[command-result]\nout\n[/command-result]",
		"```python\nf()\n```\n```sh\nls\n```",
	}
	for _, in := range inputs {
		segs := Scan(in)
		prevEnd := 0
		for i, s := range segs {
			if s.Start < prevEnd {
				t.Fatalf("segment %d overlaps previous in %q: %+v", i, in, segs)
			}
			if s.End < s.Start || s.End > len(in) {
				t.Fatalf("segment %d span out of range in %q: %+v", i, in, s)
			}
			// 段间只允许丢弃空白。
			if gap := strings.TrimSpace(in[prevEnd:s.Start]); gap != "" {
				t.Fatalf("non-whitespace gap %q before segment %d in %q", gap, i, in)
			}
			if s.Type == SegmentText && strings.TrimSpace(in[s.Start:s.End]) != s.Content {
				t.Fatalf("text segment does not reconstruct source in %q: %+v", in, s)
			}
			prevEnd = s.End
		}
		if gap := strings.TrimSpace(in[prevEnd:]); gap != "" {
			t.Fatalf("uncovered trailing residue %q in %q", gap, in)
		}
	}
}

func TestDiagramTypeTable(t *testing.T) {
	cases := map[string]string{
		"sequenceDiagram\nA->>B: hi": "sequence",
		"classDiagram\nA <|-- B":     "class",
		"stateDiagram-v2\n[*] --> A": "state",
		"erDiagram\nA ||--o{ B : x":  "er",
		"gantt\ntitle t":             "gantt",
		"pie\n\"a\": 1":              "pie",
		"graph TD\nA-->B":            "flowchart",
		"":                           "flowchart",
	}
	for src, want := range cases {
		if got := DiagramType(src); got != want {
			t.Fatalf("DiagramType(%q) = %q, want %q", src, got, want)
		}
	}
}
