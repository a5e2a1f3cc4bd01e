// Package tui is the interactive chat screen of the dailyagi CLI, built on
// Bubble Tea. Conversation updates arrive as tea messages, so the transcript
// and the live reply redraw while the agent streams.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Backland-Labs/dailyagi/internal/chat"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

// updateBuffer bounds conversation updates waiting to be drawn.
const updateBuffer = 64

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	agentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	liveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// conversationMsg carries a conversation state change.
type conversationMsg chat.Update

// sentMsg is delivered when a Send returns.
type sentMsg struct {
	reply chat.Reply
	err   error
}

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	ctx     context.Context
	conv    *chat.Conversation
	updates chan chat.Update
	quit    chan struct{}
	address string

	input     []rune
	messages  []chat.Message
	current   string
	streaming bool
	err       error
	width     int
}

// New creates a chat model over conv. address is shown in the header.
func New(ctx context.Context, conv *chat.Conversation, address string) Model {
	updates := make(chan chat.Update, updateBuffer)
	quit := make(chan struct{})
	conv.Observe(func(u chat.Update) {
		select {
		case updates <- u:
		case <-quit:
		case <-ctx.Done():
		}
	})

	return Model{
		ctx:      ctx,
		conv:     conv,
		updates:  updates,
		quit:     quit,
		address:  address,
		messages: conv.Messages(),
	}
}

// Run starts the chat screen and blocks until the user quits.
func Run(ctx context.Context, conv *chat.Conversation, address string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	m := New(ctx, conv, address)
	defer m.stop()

	program := tea.NewProgram(m, opts...)
	_, err := program.Run()
	if err == nil || (errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return nil
	}
	return fmt.Errorf("chat failed: %w", err)
}

// stop stops forwarding conversation updates once nothing drains them.
func (m Model) stop() {
	close(m.quit)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case conversationMsg:
		m.messages = msg.Messages
		m.current = msg.Current
		m.streaming = msg.Streaming
		return m, m.waitForUpdate()

	case sentMsg:
		m.streaming = false
		if isInputError(msg.err) {
			m.err = msg.err
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(string(m.input))
		if text == "" || m.streaming {
			return m, nil
		}
		m.input = nil
		m.err = nil
		m.streaming = true
		return m, m.send(text)

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	case tea.KeySpace:
		m.input = append(m.input, ' ')
		return m, nil

	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	header := "dailyAGI chat"
	if m.address != "" {
		header += " · " + wallet.FormatAddress(m.address, 4)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	if m.streaming {
		live := m.current
		if live == "" {
			live = "…"
		}
		b.WriteString(agentStyle.Render("dailyAGI:") + " " + liveStyle.Render(live))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n> " + string(m.input))
	if !m.streaming {
		b.WriteString("█")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("enter send · esc quit"))
	return b.String()
}

func (m Model) renderMessage(msg chat.Message) string {
	content := msg.Content
	if m.width > 0 {
		content = lipgloss.NewStyle().Width(m.width - 12).Render(content)
	}
	if msg.Role == chat.RoleUser {
		return userStyle.Render("you:") + " " + content
	}
	return agentStyle.Render("dailyAGI:") + " " + content
}

func (m Model) send(text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.conv.Send(m.ctx, text)
		return sentMsg{reply: reply, err: err}
	}
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-m.updates:
			return conversationMsg(u)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// isInputError reports errors that never reached the transcript.
func isInputError(err error) bool {
	return errors.Is(err, chat.ErrEmptyMessage) ||
		errors.Is(err, chat.ErrBusy) ||
		errors.Is(err, chat.ErrNoWallet)
}
