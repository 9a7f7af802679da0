package update

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriReview/internal/models"
)

func HandleUpdate(form *models.FormModel, msg tea.Msg, opts Options) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsg(form, msg, opts)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(form, msg)
		return nil
	case spinner.TickMsg:
		return HandleSpinnerTick(form, msg)
	case CoreEventMsg:
		return HandleCoreEvent(form, msg, opts)
	}

	// Cursor blink and other textarea-internal messages
	if form.Focus == models.FocusInput {
		var cmd tea.Cmd
		form.Input, cmd = form.Input.Update(msg)
		return cmd
	}
	return nil
}
