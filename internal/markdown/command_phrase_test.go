package markdown

import "testing"

func TestExtractCommandPhrases(t *testing.T) {
	segs := ExtractCommandPhrases("Let me look.\nI will now execute `ls -la` to list files.")
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Type != SegmentText || segs[0].Content != "Let me look." {
		t.Fatalf("unexpected leading segment %+v", segs[0])
	}
	if segs[1].Type != SegmentCommandExec || segs[1].Command != "ls -la" {
		t.Fatalf("unexpected command segment %+v", segs[1])
	}
	if segs[2].Type != SegmentText || segs[2].Content != "to list files." {
		t.Fatalf("unexpected trailing segment %+v", segs[2])
	}
}

func TestExtractCommandPhrasesCaseInsensitive(t *testing.T) {
	for _, in := range []string{
		"EXECUTING COMMAND: `pwd`",
		"executing: `pwd`",
		"Executing the command: `pwd`",
		"I WILL EXECUTE `pwd`",
	} {
		segs := ExtractCommandPhrases(in)
		if len(segs) != 1 || segs[0].Type != SegmentCommandExec || segs[0].Command != "pwd" {
			t.Fatalf("input %q: unexpected segments %+v", in, segs)
		}
	}
}

func TestExtractCommandPhrasesNoMatch(t *testing.T) {
	segs := ExtractCommandPhrases("  just prose here  ")
	if len(segs) != 1 || segs[0].Type != SegmentText || segs[0].Content != "just prose here" {
		t.Fatalf("unexpected segments %+v", segs)
	}
}

func TestExtractCommandPhrasesMultiple(t *testing.T) {
	segs := ExtractCommandPhrases("I will execute `ls`\nthen\nI will execute `pwd`")
	var cmds []string
	for _, s := range segs {
		if s.Type == SegmentCommandExec {
			cmds = append(cmds, s.Command)
		}
	}
	if len(cmds) != 2 || cmds[0] != "ls" || cmds[1] != "pwd" {
		t.Fatalf("unexpected commands %v from %+v", cmds, segs)
	}
}
