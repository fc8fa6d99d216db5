// Package tui provides the interactive chat view: questions go in at the
// bottom, answers scroll up with their provenance badge and citations.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docsage-labs/docsage-cli/internal/core/domain"
	"github.com/docsage-labs/docsage-cli/internal/core/ports/driving"
)

// Styles for chat rendering.
var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	citationStyle = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Faint(true)

	sourceBadges = map[domain.Source]lipgloss.Style{
		domain.SourceDocument:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		domain.SourceWebSearch:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		domain.SourceGeneralKnowledge: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
	}
)

// answerMsg carries a completed query back into the update loop.
type answerMsg struct {
	query  string
	answer *domain.SynthesizedAnswer
	err    error
}

// ChatModel is the bubbletea model for the chat view.
type ChatModel struct {
	query    driving.QueryService
	ctx      context.Context
	input    textinput.Model
	viewport viewport.Model

	history []string
	waiting bool
	ready   bool
	width   int
	height  int
}

// NewChatModel creates the chat view.
func NewChatModel(ctx context.Context, query driving.QueryService) *ChatModel {
	input := textinput.New()
	input.Placeholder = "Ask a question about your documents..."
	input.Focus()
	input.CharLimit = 512

	return &ChatModel{
		query:    query,
		ctx:      ctx,
		input:    input,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

// Init initialises the view.
func (m *ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the chat view.
func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case answerMsg:
		m.waiting = false
		m.appendExchange(msg)
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit dispatches the typed question as an async query.
func (m *ChatModel) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.waiting {
		return m, nil
	}

	m.input.SetValue("")
	m.waiting = true
	m.history = append(m.history, questionStyle.Render("You: ")+question)
	m.refreshViewport()

	return m, func() tea.Msg {
		answer, err := m.query.AnswerQuery(m.ctx, question, driving.QueryOptions{})
		return answerMsg{query: question, answer: answer, err: err}
	}
}

// appendExchange renders a completed answer into the history.
func (m *ChatModel) appendExchange(msg answerMsg) {
	if msg.err != nil {
		m.history = append(m.history, errorStyle.Render("Error: "+msg.err.Error()), "")
		m.refreshViewport()
		return
	}

	badge := sourceBadges[msg.answer.Source].Render("[" + string(msg.answer.Source) + "]")
	m.history = append(m.history, badge+" "+answerStyle.Render(msg.answer.Response))

	for _, c := range msg.answer.Citations {
		m.history = append(m.history,
			citationStyle.Render(fmt.Sprintf("  - %s, page %d (%.2f)", c.Filename, c.PageNumber, c.Confidence)))
	}
	m.history = append(m.history,
		citationStyle.Render(fmt.Sprintf("  answered in %.2fs", msg.answer.ProcessingTime)), "")
	m.refreshViewport()
}

func (m *ChatModel) refreshViewport() {
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

// View renders the chat view.
func (m *ChatModel) View() string {
	status := ""
	if m.waiting {
		status = helpStyle.Render("thinking...")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		m.viewport.View(),
		status,
		m.input.View(),
		helpStyle.Render("enter: ask - esc: quit"),
	)
}

// Run starts the chat TUI and blocks until the user quits.
func Run(ctx context.Context, query driving.QueryService) error {
	program := tea.NewProgram(NewChatModel(ctx, query), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
