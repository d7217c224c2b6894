package markdown

import "testing"

func TestNormalizeDoubledBackticks(t *testing.T) {
	got := Normalize("Result:``42``")
	if got != "Result:`42`" {
		t.Fatalf("unexpected normalize result: %q", got)
	}
}

func TestNormalizeEscapedBackticks(t *testing.T) {
	got := Normalize("use \\`ls\\` here")
	if got != "use `ls` here" {
		t.Fatalf("unexpected normalize result: %q", got)
	}
}

func TestNormalizeInlineTripleBacktick(t *testing.T) {
	// 行中被非换行字符紧邻包围的三连反引号是强调伪影，折叠为单个。
	got := Normalize("see```code```here")
	if got != "see`code`here" {
		t.Fatalf("unexpected normalize result: %q", got)
	}
}

func TestNormalizeKeepsFences(t *testing.T) {
	in := "Let me check.\n```python\nprint(1)\n```\nDone."
	if got := Normalize(in); got != in {
		t.Fatalf("fence was mangled: %q", got)
	}
}

func TestNormalizeHTMLEntities(t *testing.T) {
	got := Normalize("Result:&#96;&#96;42&#x60;&#x60;")
	if got != "Result:`42`" {
		t.Fatalf("unexpected normalize result: %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"Result:``42``",
		"see```code```here",
		"```go\nfmt.Println(1)\n```",
		"mixed \\`a\\` and ``b`` and &#96;&#96;c&#96;&#96;",
		"````",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
