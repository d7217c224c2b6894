package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prism-cli/internal/compose"
	"prism-cli/internal/config"
	"prism-cli/internal/events"
	"prism-cli/internal/history"
	"prism-cli/internal/logger"
	"prism-cli/internal/markdown"
	"prism-cli/internal/message"
	"prism-cli/internal/reveal"
	"prism-cli/internal/stream"
	"prism-cli/internal/tui/render"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var log = logger.Named("tui")

// 主视图揭示帧间隔。速度（每帧字符数）来自配置。
const revealFrameInterval = 33 * time.Millisecond

type Options struct {
	Session         *stream.Session
	Bus             *events.Bus
	Config          config.Config
	InitialMessages []message.Message
	History         *history.Store
}

type busEventMsg struct {
	Event events.Event
}

type revealTickMsg struct{}

type revealDoneMsg struct {
	MessageID string
}

type statusClearMsg struct{}

type Model struct {
	textarea   textarea.Model
	viewport   viewport.Model
	spin       spinner.Model
	transcript *render.Transcript
	reveals    *reveal.Set
	session    *stream.Session
	bus        *events.Bus
	sub        <-chan events.Event
	doneCh     chan string
	cfg        config.Config
	history    *history.Store
	histTexts  []string
	histIdx    int

	messages    []message.Message
	streamingID string
	pending     bool
	ticking     bool
	showHelp    bool
	status      string
	err         error
	width       int
	height      int
}

func NewModel(opts Options) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything (/help for commands)"
	ta.Prompt = "┃ "
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	speed := opts.Config.RevealSpeed
	if speed <= 0 {
		speed = config.DefaultRevealSpeed
	}
	reveals, err := reveal.NewSet(speed)
	if err != nil {
		panic(err)
	}

	m := &Model{
		textarea:   ta,
		viewport:   vp,
		spin:       sp,
		transcript: render.NewTranscript(80, render.NewRegistry()),
		reveals:    reveals,
		session:    opts.Session,
		bus:        opts.Bus,
		doneCh:     make(chan string, 8),
		cfg:        opts.Config,
		history:    opts.History,
		messages:   append([]message.Message{}, opts.InitialMessages...),
	}
	if opts.History != nil {
		if texts, err := opts.History.LoadTexts(); err == nil {
			m.histTexts = texts
		}
		m.histIdx = len(m.histTexts)
	}
	if opts.Bus != nil {
		m.sub = opts.Bus.Subscribe()
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spin.Tick}
	if m.sub != nil {
		cmds = append(cmds, m.listenBus())
	}
	cmds = append(cmds, m.listenCompletion())
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelActiveStream()
			return m, tea.Quit
		case "esc":
			if m.streamingID != "" {
				m.cancelActiveStream()
				m.refresh()
			}
		case "ctrl+p":
			m.recallHistory(-1)
			return m, tea.Batch(cmds...)
		case "ctrl+n":
			m.recallHistory(+1)
			return m, tea.Batch(cmds...)
		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, tea.Batch(cmds...)
			}
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				if cmd := m.handleSlash(input); cmd != nil {
					cmds = append(cmds, cmd)
				}
			} else if cmd := m.submit(input); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

	case spinner.TickMsg:
		if m.pending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}

	case busEventMsg:
		cmds = append(cmds, m.handleBusEvent(msg.Event)...)
		cmds = append(cmds, m.listenBus())

	case revealTickMsg:
		more := m.reveals.Tick()
		m.refresh()
		if more {
			cmds = append(cmds, revealTick())
		} else {
			m.ticking = false
		}

	case revealDoneMsg:
		// 揭示到达终态：贴底并继续监听后续完成信号。
		m.viewport.GotoBottom()
		log.WithField("message_id", msg.MessageID).Infof("reveal completed")
		cmds = append(cmds, m.listenCompletion())

	case statusClearMsg:
		m.status = ""
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.textarea.View())
	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(helpView())
	}
	return b.String()
}

func (m *Model) statusLine() string {
	style := lipgloss.NewStyle().Faint(true)
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Render("error: " + m.err.Error())
	case m.streamingID != "":
		return m.spin.View() + style.Render(" streaming…  esc to cancel")
	case m.status != "":
		return style.Render(m.status)
	default:
		return style.Render("enter to send · /help for commands")
	}
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	m.textarea.SetWidth(width)
	m.viewport.Width = width
	vpHeight := height - m.textarea.Height() - 2
	if m.showHelp {
		vpHeight -= strings.Count(helpView(), "\n") + 1
	}
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Height = vpHeight
	m.transcript.SetWidth(width)
	m.refresh()
}

func (m *Model) submit(input string) tea.Cmd {
	if m.session == nil {
		m.err = fmt.Errorf("no backend configured")
		return nil
	}
	if m.streamingID != "" {
		m.status = "still streaming; esc to cancel first"
		return clearStatusLater()
	}
	m.err = nil
	m.rememberInput(input)
	m.messages = append(m.messages, message.NewUser(input))

	id := m.session.Send(context.Background(), m.messages)
	assistant := message.NewAssistant()
	assistant.ID = id
	m.messages = append(m.messages, assistant)
	m.streamingID = id
	m.pending = true
	m.refresh()
	m.viewport.GotoBottom()
	return m.spin.Tick
}

func (m *Model) handleBusEvent(evt events.Event) []tea.Cmd {
	var cmds []tea.Cmd
	switch payload := evt.Payload.(type) {
	case events.StreamChunk:
		msg := m.findMessage(payload.MessageID)
		if msg == nil {
			return nil
		}
		msg.StreamingText += payload.Text
		m.syncReveal(msg)
		m.refresh()
		if !m.ticking && m.reveals.Active() {
			m.ticking = true
			cmds = append(cmds, revealTick())
		}

	case events.BlocksPromoted:
		msg := m.findMessage(payload.MessageID)
		if msg == nil {
			return nil
		}
		msg.MediaBlocks = payload.Blocks
		msg.ProcessedTextLength = payload.ProcessedTextLength
		// 提升只是把目标前缀换了个渲染形态，游标随前缀平移而不是重置。
		ctrl := m.acquireReveal(msg.ID)
		ctrl.RebaseTarget(revealTarget(*msg))
		m.refresh()

	case events.StreamFinal:
		msg := m.findMessage(payload.MessageID)
		if msg == nil {
			return nil
		}
		msg.Content = payload.Content
		m.finishStream(msg.ID, true)
		m.refresh()

	case events.StreamError:
		msg := m.findMessage(payload.MessageID)
		if msg == nil {
			return nil
		}
		msg.Content = strings.TrimSpace(msg.StreamingText)
		// 出错前已流出的散文先提升为 text 块，保证部分回答不随错误块丢失，
		// 且在错误提示之前按原文顺序显示。
		blocks := append([]message.MediaBlock{}, msg.MediaBlocks...)
		processed := msg.ProcessedTextLength
		if processed < 0 {
			processed = 0
		}
		if processed > len(msg.StreamingText) {
			processed = len(msg.StreamingText)
		}
		if tail := strings.TrimSpace(msg.StreamingText[processed:]); tail != "" {
			blocks = append(blocks, message.NewBlock(message.BlockText, message.TextData{Text: tail}))
		}
		msg.MediaBlocks = append(blocks,
			message.NewBlock(message.BlockError, message.ErrorData{Message: payload.Err}))
		msg.ProcessedTextLength = len(msg.StreamingText)
		m.finishStream(msg.ID, false)
		m.refresh()
	}
	return cmds
}

// finishStream 结束一条消息的流式状态。freeze=true 时冻结控制器以触发
// 一次性完成回调；false（错误路径）直接解除，不触发回调。
// 冻结后、退出流式态之前先刷新一次缓存：流式→终态的跳过规则会复用
// 这批缓存行，它们必须已经是全文。
func (m *Model) finishStream(id string, freeze bool) {
	m.pending = false
	if !freeze {
		if m.streamingID == id {
			m.streamingID = ""
		}
		m.reveals.Detach(id)
		return
	}
	if msg := m.findMessage(id); msg != nil {
		ctrl := m.acquireReveal(msg.ID)
		ctrl.SetTarget(revealTarget(*msg), false)
	}
	m.refresh()
	if m.streamingID == id {
		m.streamingID = ""
	}
}

func (m *Model) cancelActiveStream() {
	if m.streamingID == "" {
		return
	}
	if m.session != nil {
		m.session.Cancel(m.streamingID)
	}
	if msg := m.findMessage(m.streamingID); msg != nil && msg.Content == "" {
		msg.Content = strings.TrimSpace(msg.StreamingText)
	}
	m.reveals.Detach(m.streamingID)
	m.streamingID = ""
	m.pending = false
}

func (m *Model) syncReveal(msg *message.Message) {
	ctrl := m.acquireReveal(msg.ID)
	ctrl.SetTarget(revealTarget(*msg), true)
}

func (m *Model) acquireReveal(id string) *reveal.Controller {
	return m.reveals.Acquire(id, func() {
		select {
		case m.doneCh <- id:
		default:
		}
	})
}

// revealTarget 返回该消息当前应被揭示的文本：已提升为媒体块的前缀之后的余量。
func revealTarget(msg message.Message) string {
	return compose.Compose(msg, true).RevealText
}

func (m *Model) findMessage(id string) *message.Message {
	for i := range m.messages {
		if m.messages[i].ID == id {
			return &m.messages[i]
		}
	}
	return nil
}

func (m *Model) refresh() {
	atBottom := m.viewport.AtBottom()
	m.transcript.Sync(m.messages, m.streamingID, func(id string) string {
		v, ok := m.reveals.Visible(id)
		if !ok {
			return ""
		}
		return v
	})
	m.viewport.SetContent(m.transcript.String())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) listenBus() tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-m.sub
		if !ok {
			return nil
		}
		return busEventMsg{Event: evt}
	}
}

func (m *Model) listenCompletion() tea.Cmd {
	return func() tea.Msg {
		id, ok := <-m.doneCh
		if !ok {
			return nil
		}
		return revealDoneMsg{MessageID: id}
	}
}

func revealTick() tea.Cmd {
	return tea.Tick(revealFrameInterval, func(time.Time) tea.Msg {
		return revealTickMsg{}
	})
}

func clearStatusLater() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

func (m *Model) rememberInput(input string) {
	m.histTexts = append(m.histTexts, input)
	m.histIdx = len(m.histTexts)
	if m.history != nil {
		if err := m.history.Append(input); err != nil {
			log.WithField("error", err).Warnf("failed to append input history")
		}
	}
}

// recallHistory 在输入历史中移动：dir 为 -1 向旧、+1 向新。
// 走到最新一条之后恢复为空输入。
func (m *Model) recallHistory(dir int) {
	if len(m.histTexts) == 0 {
		return
	}
	next := m.histIdx + dir
	if next < 0 || next > len(m.histTexts) {
		return
	}
	m.histIdx = next
	if next == len(m.histTexts) {
		m.textarea.Reset()
		return
	}
	m.textarea.SetValue(m.histTexts[next])
	m.textarea.CursorEnd()
}

// lastCodeSnippet 从消息列表末尾向前找最近一段代码（媒体块或围栏段）。
func lastCodeSnippet(msgs []message.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Role != message.RoleAssistant {
			continue
		}
		for k := len(msg.MediaBlocks) - 1; k >= 0; k-- {
			if msg.MediaBlocks[k].Type != message.BlockCode {
				continue
			}
			var data message.CodeData
			if msg.MediaBlocks[k].DecodeData(&data) && data.Code != "" {
				return data.Code, true
			}
		}
		segs := markdown.Scan(markdown.Normalize(msg.Content))
		for k := len(segs) - 1; k >= 0; k-- {
			if segs[k].Type == markdown.SegmentCode && segs[k].Code != "" {
				return segs[k].Code, true
			}
		}
	}
	return "", false
}

func (m *Model) copyLastCode() {
	code, ok := lastCodeSnippet(m.messages)
	if !ok {
		m.status = "no code block to copy"
		return
	}
	if err := clipboard.WriteAll(code); err != nil {
		m.status = "clipboard unavailable: " + err.Error()
		return
	}
	m.status = "copied last code block"
}
