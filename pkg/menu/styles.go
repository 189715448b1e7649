// pkg/menu/styles.go

package menu

import "github.com/charmbracelet/lipgloss"

// Palette shared by every menu view.
var (
	colorPrimary = lipgloss.Color("#00ffff") // Cyan
	colorSuccess = lipgloss.Color("#00ff00") // Green
	colorWarning = lipgloss.Color("#ffaa00") // Orange
	colorError   = lipgloss.Color("#ff0000") // Red
	colorInfo    = lipgloss.Color("#0099ff") // Blue
	colorMuted   = lipgloss.Color("#666666") // Gray
	colorBg      = lipgloss.Color("#1a1a2e") // Dark blue
)

type styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Category lipgloss.Style
	Cursor   lipgloss.Style
	Checked  lipgloss.Style
	Normal   lipgloss.Style
	Detail   lipgloss.Style
	Muted    lipgloss.Style
	Button   lipgloss.Style
	Active   lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Background(colorBg).
			Padding(0, 1).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(colorInfo).
			Italic(true),

		Category: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorInfo).
			MarginTop(1),

		Cursor: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),

		Checked: lipgloss.NewStyle().
			Foreground(colorSuccess),

		Normal: lipgloss.NewStyle(),

		Detail: lipgloss.NewStyle().
			Foreground(colorMuted),

		Muted: lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1),

		Button: lipgloss.NewStyle().
			Background(lipgloss.Color("#3d5a80")).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			MarginRight(1),

		Active: lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Padding(0, 2).
			MarginRight(1),
	}
}

// healthIcon maps an inspected container health status to a display glyph.
func healthIcon(status string) string {
	switch status {
	case "healthy", "none":
		return "🟢"
	case "unhealthy":
		return "🔴"
	case "starting":
		return "🟡"
	default:
		return "⚫"
	}
}
