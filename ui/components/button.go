package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriReview/ui/styles"
)

const ButtonLabel = "Review Code"

func RenderButton(focused bool, width int) string {
	button := styles.ButtonStyle(focused).Render(ButtonLabel)
	if width <= 0 {
		return button
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, button)
}
