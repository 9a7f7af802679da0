package models

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
)

// Focus identifies which control receives key input
type Focus int

const (
	FocusInput Focus = iota
	FocusButton
)

// FormModel represents the review form state - only touched by the UI loop
type FormModel struct {
	Code         string         // The code exactly as entered; what gets submitted
	Input        textarea.Model // Renders Code, never read back
	Feedback     string         // Last feedback or the fixed error text; empty hides the panel
	FeedbackView viewport.Model // Scroll position within Feedback
	LatestSeq    uint64         // Sequence number of the most recent submission
	InFlight     int            // Exchanges submitted but not yet settled
	Status       string         // Status bar text
	Spinner      spinner.Model  // Animates the status bar while exchanges are in flight
	Focus        Focus          // Input area or Review Code control
	Width        int            // Terminal width
	Height       int            // Terminal height
}

// Terminals deliver Enter and pasted line breaks as CR; CRLF pastes would
// otherwise double every line.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeLineBreaks rewrites CRLF and lone CR to LF. Nothing else in the
// text is touched.
func NormalizeLineBreaks(s string) string {
	return lineBreaks.Replace(s)
}

// InputText returns the code currently in the input area.
func (f *FormModel) InputText() string {
	return f.Code
}

// SetCode replaces the code and redraws the input area.
func (f *FormModel) SetCode(text string) {
	f.Code = NormalizeLineBreaks(text)
	f.Input.SetValue(f.Code)
}

// AppendCode adds typed or pasted text at the end of the code.
func (f *FormModel) AppendCode(text string) {
	text = NormalizeLineBreaks(text)
	if text == "" {
		return
	}
	f.Code += text
	f.Input.CursorEnd()
	f.Input.InsertString(text)
}

// DeleteLastRune removes the final character, if any.
func (f *FormModel) DeleteLastRune() {
	if f.Code == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(f.Code)
	f.Code = f.Code[:len(f.Code)-size]
	f.Input.SetValue(f.Code)
}

// SetFeedback replaces the feedback and scrolls the panel back to its top.
func (f *FormModel) SetFeedback(feedback string) {
	f.Feedback = feedback
	f.FeedbackView.SetContent(feedback)
	f.FeedbackView.GotoTop()
}

// NextSeq reserves the sequence number for a new submission.
func (f *FormModel) NextSeq() uint64 {
	f.LatestSeq++
	return f.LatestSeq
}

// HasFeedback reports whether the feedback panel should render.
func (f *FormModel) HasFeedback() bool {
	return f.Feedback != ""
}

// InputRows matches the visible height of the code area
const InputRows = 12

// FeedbackRows is the feedback panel height before the first window size
const FeedbackRows = 10

// NewFormModel returns the initial form: empty focused input, no feedback.
func NewFormModel() FormModel {
	input := textarea.New()
	input.Placeholder = "Enter your code..."
	input.CharLimit = 0
	input.MaxHeight = 0
	input.SetHeight(InputRows)
	input.Focus()

	return FormModel{
		Input:        input,
		FeedbackView: viewport.New(76, FeedbackRows),
		Status:       "Ready",
		Spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		Focus:        FocusInput,
	}
}
