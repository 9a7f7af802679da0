package styles

import "github.com/charmbracelet/lipgloss"

const (
	buttonColor      = lipgloss.Color("#007bff")
	buttonHoverColor = lipgloss.Color("#0056b3")
	panelBorderColor = lipgloss.Color("#e1e1e1")
)

func TitleStyle(width int) lipgloss.Style {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("252")).
		Align(lipgloss.Center).
		MarginBottom(1)
	if width > 0 {
		style = style.Width(width)
	}
	return style
}

func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		MarginBottom(1)
}

func InputStyle(width int, focused bool) lipgloss.Style {
	border := lipgloss.Color("240")
	if focused {
		border = lipgloss.Color("62")
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style
}

// ButtonStyle darkens the button while it has focus, the terminal stand-in
// for mouse hover.
func ButtonStyle(focused bool) lipgloss.Style {
	bg := buttonColor
	if focused {
		bg = buttonHoverColor
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(bg).
		Padding(0, 3).
		Bold(focused)
}

// FeedbackStyle leaves tabs alone so indented code in the feedback keeps
// its indentation.
func FeedbackStyle(width int) lipgloss.Style {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(panelBorderColor).
		Padding(0, 1).
		TabWidth(lipgloss.NoTabConversion)
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style
}

func FeedbackHeadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214"))
}

func StatusStyle(width int) lipgloss.Style {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style
}

func HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))
}
