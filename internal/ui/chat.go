package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anushkanegi003/google-meet/internal/client"
)

// SendFunc relays one chat line to the room.
type SendFunc func(text string) error

type eventMsg client.Event

type closedMsg struct{}

type sendErrMsg struct{ err error }

// ChatModel is an interactive room view: a scrolling transcript above a
// single-line input.
type ChatModel struct {
	room   string
	name   string
	events <-chan client.Event
	send   SendFunc

	input    textinput.Model
	viewport viewport.Model
	lines    []string
	ready    bool
	closed   bool
}

// NewChatModel creates a chat view for room, reading events and sending lines with send.
func NewChatModel(room, name string, events <-chan client.Event, send SendFunc) *ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	return &ChatModel{
		room:   room,
		name:   name,
		events: events,
		send:   send,
		input:  ti,
		lines:  []string{MutedStyle.Render(fmt.Sprintf("%s joined %s as %s", IconRoom, room, name))},
	}
}

// RunChat runs the chat view until the user quits or the connection ends.
func RunChat(m *ChatModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m *ChatModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text != "" && !m.closed {
				cmds = append(cmds, m.sendLine(text))
			}
		}

	case tea.WindowSizeMsg:
		height := max(msg.Height-lipgloss.Height(m.header())-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()

	case eventMsg:
		m.appendLine(FormatEvent(client.Event(msg)))
		cmds = append(cmds, m.waitForEvent())

	case sendErrMsg:
		m.appendLine(ErrorStyle.Render(fmt.Sprintf("%s %v", IconError, msg.err)))

	case closedMsg:
		m.closed = true
		m.appendLine(WarningStyle.Render("connection to relay closed, press esc to exit"))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) sendLine(text string) tea.Cmd {
	return func() tea.Msg {
		if err := m.send(text); err != nil {
			return sendErrMsg{err: err}
		}
		// The relay echoes our own message back; nothing to render here.
		return nil
	}
}

func (m *ChatModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// Lines returns the transcript rendered so far.
func (m *ChatModel) Lines() []string {
	return m.lines
}

func (m *ChatModel) header() string {
	return HeaderStyle.Render(fmt.Sprintf("%s %s", IconChat, m.room))
}

func (m *ChatModel) View() string {
	if !m.ready {
		return "Connecting..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.header(), m.viewport.View(), m.input.View())
}
