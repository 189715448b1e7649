// pkg/interaction/input.go

package interaction

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// PromptInput displays a prompt and reads user input, returning the default
// when the user just presses enter.
func PromptInput(prompt, defaultVal string) string {
	reader := bufio.NewReader(os.Stdin)
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Printf("%s: ", prompt)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

// PromptPassword displays a prompt and reads a password without echoing.
func PromptPassword(prompt string) (string, error) {
	fmt.Printf("%s: ", prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println()
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

// PromptTypedConfirmation requires the user to type an exact phrase, gating
// destructive operations like `metis nuke`. The headline goes through the
// logger, so the file log keeps a record of what was asked; the terminal core
// renders it as plain text regardless of level.
func PromptTypedConfirmation(prompt, phrase string) bool {
	zap.L().Info("terminal prompt: " + prompt)

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Type %q to continue: ", phrase)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(input) == phrase
}
