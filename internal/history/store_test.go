package history

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppendAndLoad(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "history.jsonl")}

	for _, text := range []string{"first", "  second  ", ""} {
		if err := s.Append(text); err != nil {
			t.Fatalf("Append(%q): %v", text, err)
		}
	}

	texts, err := s.LoadTexts()
	if err != nil {
		t.Fatalf("LoadTexts: %v", err)
	}
	want := []string{"first", "second"}
	if len(texts) != len(want) {
		t.Fatalf("texts = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("texts[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := &Store{Path: filepath.Join(t.TempDir(), "nope.jsonl")}
	texts, err := s.LoadTexts()
	if err != nil || texts != nil {
		t.Fatalf("LoadTexts = %v, %v; want nil, nil", texts, err)
	}
}

func TestLoadSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	content := `{"text":"good","ts":"2026-01-02T03:04:05Z"}` + "\nnot json\n" + `{"text":"also good","ts":"2026-01-02T03:04:06Z"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &Store{Path: path}
	texts, err := s.LoadTexts()
	if err != nil {
		t.Fatalf("LoadTexts: %v", err)
	}
	if len(texts) != 2 || texts[0] != "good" || texts[1] != "also good" {
		t.Fatalf("texts = %v", texts)
	}
}
