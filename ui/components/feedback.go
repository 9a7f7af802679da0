package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Rorical/RoriReview/ui/styles"
)

const FeedbackHeading = "AI Feedback:"

// RenderFeedback returns "" when there is no feedback so the panel is left
// out of the layout entirely. Only the rows the viewport has scrolled to are
// drawn; the text itself goes out untouched, tabs included.
func RenderFeedback(view viewport.Model, feedback string, width int) string {
	if feedback == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(feedback, "\r\n", "\n"), "\n")
	height := view.Height
	if height <= 0 {
		height = len(lines)
	}
	top := min(max(0, view.YOffset), len(lines)-1)
	bottom := min(top+height, len(lines))

	heading := styles.FeedbackHeadingStyle().Render(FeedbackHeading)
	body := strings.Join(lines[top:bottom], "\n")
	if top > 0 || bottom < len(lines) {
		body += "\n" + styles.HelpStyle().Render(
			fmt.Sprintf("lines %d-%d of %d (pgup/pgdown)", top+1, bottom, len(lines)))
	}
	return styles.FeedbackStyle(width).Render(heading + "\n" + body)
}
