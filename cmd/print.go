// cmd/print.go

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// User-facing output styling. Logs go through zap; these are the short
// status lines the stack operator actually reads.
var (
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000"))
	styleBold    = lipgloss.NewStyle().Bold(true)
)

func printInfo(format string, a ...any) {
	fmt.Println(styleInfo.Render(fmt.Sprintf(format, a...)))
}

func printSuccess(format string, a ...any) {
	fmt.Println(styleSuccess.Render(fmt.Sprintf(format, a...)))
}

func printWarn(format string, a ...any) {
	fmt.Println(styleWarn.Render(fmt.Sprintf(format, a...)))
}

func printError(format string, a ...any) {
	fmt.Println(styleError.Render(fmt.Sprintf(format, a...)))
}

func printBold(format string, a ...any) {
	fmt.Println(styleBold.Render(fmt.Sprintf(format, a...)))
}

func printPlain(format string, a ...any) {
	fmt.Printf(format+"\n", a...)
}

func printBlank() {
	fmt.Println()
}
