package tui

import (
	"fmt"
	"strconv"
	"strings"

	"prism-cli/internal/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

type slashCommand struct {
	Name  string
	Usage string
	Help  string
}

var slashCommands = []slashCommand{
	{Name: "help", Usage: "/help", Help: "显示命令列表"},
	{Name: "clear", Usage: "/clear", Help: "清空当前会话"},
	{Name: "copy", Usage: "/copy", Help: "复制最近一段代码到剪贴板"},
	{Name: "speed", Usage: "/speed <n>", Help: "设置每帧揭示字符数并写回配置"},
	{Name: "quit", Usage: "/quit", Help: "退出"},
}

func slashCommandNames() []string {
	names := make([]string, len(slashCommands))
	for i, c := range slashCommands {
		names[i] = c.Name
	}
	return names
}

// resolveSlash 将用户输入的命令名解析到已注册命令，容忍前缀与轻微拼写偏差。
func resolveSlash(name string) (slashCommand, bool) {
	for _, c := range slashCommands {
		if c.Name == name {
			return c, true
		}
	}
	matches := fuzzy.Find(name, slashCommandNames())
	if len(matches) == 0 {
		return slashCommand{}, false
	}
	return slashCommands[matches[0].Index], true
}

func (m *Model) handleSlash(input string) tea.Cmd {
	fields := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := resolveSlash(strings.ToLower(fields[0]))
	if !ok {
		m.status = fmt.Sprintf("unknown command %q; /help lists commands", fields[0])
		return clearStatusLater()
	}

	switch cmd.Name {
	case "help":
		m.showHelp = !m.showHelp
		m.resize(m.width, m.height)
	case "clear":
		m.cancelActiveStream()
		m.reveals.DetachAll()
		m.messages = nil
		m.transcript.Reset()
		m.err = nil
		m.refresh()
		m.status = "conversation cleared"
		return clearStatusLater()
	case "copy":
		m.copyLastCode()
		return clearStatusLater()
	case "speed":
		if len(fields) < 2 {
			m.status = "usage: /speed <chars-per-frame>"
			return clearStatusLater()
		}
		return m.setSpeed(fields[1])
	case "quit":
		m.cancelActiveStream()
		return tea.Quit
	}
	return nil
}

func (m *Model) setSpeed(arg string) tea.Cmd {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		m.status = fmt.Sprintf("invalid speed %q: expected a positive integer", arg)
		return clearStatusLater()
	}
	if err := m.reveals.SetSpeed(n); err != nil {
		m.status = err.Error()
		return clearStatusLater()
	}
	m.cfg.RevealSpeed = n
	if err := config.Save(m.cfg.Source, m.cfg); err != nil {
		log.WithField("error", err).Warnf("failed to persist reveal speed")
		m.status = fmt.Sprintf("speed set to %d (config not saved: %v)", n, err)
	} else {
		m.status = fmt.Sprintf("speed set to %d", n)
	}
	return clearStatusLater()
}

func helpView() string {
	var b strings.Builder
	b.WriteString("commands:\n")
	for _, c := range slashCommands {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", c.Usage, c.Help))
	}
	return strings.TrimRight(b.String(), "\n")
}
