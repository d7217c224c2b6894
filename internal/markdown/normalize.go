package markdown

import "strings"

// Normalize 清理模型输出中常见的反引号畸形：成对重复、转义、行中三连、
// HTML 实体编码。纯函数，幂等，永不失败。在分段与 Markdown 渲染之前调用。
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	out := collapseBacktickRuns(text)
	out = strings.ReplaceAll(out, "\\`", "`")
	out = strings.ReplaceAll(out, "&#96;&#96;", "`")
	out = strings.ReplaceAll(out, "&#x60;&#x60;", "`")
	// 替换可能拼出新的成对反引号，再收敛一次保证幂等。
	return collapseBacktickRuns(out)
}

// collapseBacktickRuns 按连续反引号的长度处理：
//   - 恰好 2 个：重复伪影，折叠为 1 个。
//   - 恰好 3 个且前后紧邻非换行字符：行中强调伪影而非围栏，折叠为 1 个。
//   - 其余长度（含行首围栏的 3 个）原样保留。
func collapseBacktickRuns(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] != '`' {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && runes[j] == '`' {
			j++
		}
		run := j - i
		switch {
		case run == 2:
			b.WriteByte('`')
		case run == 3 && isInlineTriple(runes, i, j):
			b.WriteByte('`')
		default:
			for k := 0; k < run; k++ {
				b.WriteByte('`')
			}
		}
		i = j
	}
	return b.String()
}

func isInlineTriple(runes []rune, start, end int) bool {
	if start == 0 || end >= len(runes) {
		return false
	}
	return runes[start-1] != '\n' && runes[end] != '\n'
}
