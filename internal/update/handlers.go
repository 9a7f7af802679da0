package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriReview/internal/eventbus"
	"github.com/Rorical/RoriReview/internal/models"
	"github.com/Rorical/RoriReview/internal/review"
)

// Options carries what the handlers need beyond the form itself
type Options struct {
	EventBus     *eventbus.EventBus
	Keys         KeyMap
	DiscardStale bool // Drop settlements older than the latest submission
	ServiceReady bool
	Logger       *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// HandleKeyMsg handles keyboard input for the form
func HandleKeyMsg(form *models.FormModel, keyMsg tea.KeyMsg, opts Options) tea.Cmd {
	switch {
	case key.Matches(keyMsg, opts.Keys.Quit):
		return tea.Quit
	case key.Matches(keyMsg, opts.Keys.Submit):
		return SubmitForReview(form, opts)
	case key.Matches(keyMsg, opts.Keys.NextFocus), key.Matches(keyMsg, opts.Keys.PrevFocus):
		return toggleFocus(form)
	case form.Focus == models.FocusButton && key.Matches(keyMsg, opts.Keys.Press):
		return SubmitForReview(form, opts)
	case key.Matches(keyMsg, opts.Keys.ScrollUp):
		form.FeedbackView.ViewUp()
		return nil
	case key.Matches(keyMsg, opts.Keys.ScrollDown):
		form.FeedbackView.ViewDown()
		return nil
	}

	if form.Focus != models.FocusInput {
		return nil
	}
	editInput(form, keyMsg)
	return nil
}

// editInput applies a key to the stored code. The textarea only mirrors the
// result, so tabs, long lines and any number of lines survive unchanged.
func editInput(form *models.FormModel, keyMsg tea.KeyMsg) {
	switch keyMsg.Type {
	case tea.KeyRunes, tea.KeySpace:
		form.AppendCode(string(keyMsg.Runes))
	case tea.KeyEnter:
		form.AppendCode("\n")
	case tea.KeyBackspace:
		form.DeleteLastRune()
	}
}

// UpdateInput replaces the input text
func UpdateInput(form *models.FormModel, text string) {
	form.SetCode(text)
}

// submitWait bounds how long the UI loop waits for room on the bus
const submitWait = 2 * time.Second

// SubmitForReview hands the current input to the core. The exchange itself
// runs off the UI loop; its outcome arrives later as a CoreEventMsg.
func SubmitForReview(form *models.FormModel, opts Options) tea.Cmd {
	if !opts.ServiceReady || opts.EventBus == nil {
		form.Status = "Review service not available"
		return nil
	}

	sub := models.Submission{
		Seq:  form.NextSeq(),
		Code: form.InputText(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitWait)
	defer cancel()
	if err := opts.EventBus.DeliverToCore(ctx, eventbus.SubmitReviewEvent{Submission: sub}); err != nil {
		opts.logger().Error("Review error", "seq", sub.Seq, "error", err)
		form.SetFeedback(review.ErrorFeedback)
		form.Status = "Error sending review: " + err.Error()
		return nil
	}

	form.Status = "Reviewing"
	return nil
}

func toggleFocus(form *models.FormModel) tea.Cmd {
	if form.Focus == models.FocusInput {
		form.Focus = models.FocusButton
		form.Input.Blur()
		return nil
	}
	form.Focus = models.FocusInput
	return form.Input.Focus()
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(form *models.FormModel, coreEventMsg CoreEventMsg, opts Options) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.ReviewSettledEvent:
		ApplySettlement(form, event.Settlement, opts)
	case eventbus.StateUpdateEvent:
		wasIdle := form.InFlight == 0
		form.InFlight = event.InFlight
		if form.InFlight == 0 {
			form.Status = "Ready"
		} else {
			form.Status = fmt.Sprintf("Reviewing (%d in flight)", form.InFlight)
		}
		if wasIdle && form.InFlight > 0 {
			return form.Spinner.Tick
		}
	}

	return nil
}

// ApplySettlement overwrites the feedback with a settled exchange. By
// default whichever exchange settles last wins; with DiscardStale only the
// most recently triggered one may write.
func ApplySettlement(form *models.FormModel, s models.Settlement, opts Options) bool {
	if opts.DiscardStale && s.Seq < form.LatestSeq {
		opts.logger().Debug("Discarding stale review", "seq", s.Seq, "latest", form.LatestSeq)
		return false
	}
	form.SetFeedback(s.Feedback)
	return true
}

// chromeRows is everything on screen besides the feedback text: title,
// labelled input, button, panel border, heading and scroll line, status and
// help.
const chromeRows = models.InputRows + 17

func HandleWindowSizeMsg(form *models.FormModel, sizeMsg tea.WindowSizeMsg) {
	form.Width = sizeMsg.Width
	form.Height = sizeMsg.Height
	if w := sizeMsg.Width - 6; w > 0 {
		form.Input.SetWidth(w)
	}
	if w := sizeMsg.Width - 8; w > 0 {
		form.FeedbackView.Width = w
	}
	form.FeedbackView.Height = max(3, sizeMsg.Height-chromeRows)
	form.FeedbackView.SetYOffset(form.FeedbackView.YOffset)
}

// HandleSpinnerTick keeps the spinner turning only while exchanges are out
func HandleSpinnerTick(form *models.FormModel, tick spinner.TickMsg) tea.Cmd {
	if form.InFlight == 0 {
		return nil
	}
	var cmd tea.Cmd
	form.Spinner, cmd = form.Spinner.Update(tick)
	return cmd
}
