package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriReview/internal/dispatcher"
	"github.com/Rorical/RoriReview/internal/models"
	"github.com/Rorical/RoriReview/internal/update"
	"github.com/Rorical/RoriReview/ui/components"
)

type AppModel struct {
	form       models.FormModel
	dispatcher *dispatcher.EventDispatcher
	isReady    func() bool
	opts       update.Options
	help       help.Model
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.opts.ServiceReady = m.isReady != nil && m.isReady()

	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.form, coreEvent, m.opts)
		return m, tea.Batch(cmd, m.dispatcher.ListenForCoreEvents())
	}

	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.help.Width = size.Width
	}

	cmd := update.HandleUpdate(&m.form, msg, m.opts)
	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder

	width := m.form.Width
	b.WriteString(components.RenderTitle(width))
	b.WriteString("\n")
	b.WriteString(components.RenderInput(m.form.Input.View(), m.form.Focus == models.FocusInput, width))
	b.WriteString("\n\n")
	b.WriteString(components.RenderButton(m.form.Focus == models.FocusButton, width))
	b.WriteString("\n\n")
	if m.form.HasFeedback() {
		b.WriteString(components.RenderFeedback(m.form.FeedbackView, m.form.Feedback, width))
		b.WriteString("\n\n")
	}
	b.WriteString(components.RenderStatus(m.form.Status, m.form.InFlight, m.form.Spinner.View(), width))
	b.WriteString("\n")
	b.WriteString(components.RenderHelp(m.help.View(m.opts.Keys)))

	return b.String()
}
