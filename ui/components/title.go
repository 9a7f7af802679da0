package components

import "github.com/Rorical/RoriReview/ui/styles"

const Title = "AI Code Review Assistant"

func RenderTitle(width int) string {
	return styles.TitleStyle(width).Render(Title)
}
