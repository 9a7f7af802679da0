package components

import (
	"github.com/Rorical/RoriReview/ui/styles"
)

func RenderStatus(status string, inFlight int, spinnerView string, width int) string {
	statusContent := status
	if inFlight > 0 {
		statusContent = spinnerView + " " + status
	}

	return styles.StatusStyle(width).Render(statusContent)
}

func RenderHelp(help string) string {
	return styles.HelpStyle().Render(help)
}
