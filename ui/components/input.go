package components

import (
	"github.com/Rorical/RoriReview/ui/styles"
)

func RenderInput(inputView string, focused bool, width int) string {
	label := styles.LabelStyle().Render("Paste your code here:")
	return label + "\n" + styles.InputStyle(width, focused).Render(inputView)
}
