package tui

import (
	"prism-cli/internal/message"

	tea "github.com/charmbracelet/bubbletea"
)

// Run 启动全屏交互界面并阻塞到退出，返回退出时的完整消息列表。
func Run(opts Options) ([]message.Message, error) {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(*Model); ok {
		return m.messages, nil
	}
	return nil, nil
}
