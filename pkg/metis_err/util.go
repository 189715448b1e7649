// pkg/metis_err/util.go

package metis_err

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// ExtractSummary extracts a concise error summary from full command output.
func ExtractSummary(output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "No output provided."
	}

	lines := strings.Split(trimmed, "\n")
	var candidates []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "error") ||
			strings.Contains(lowerLine, "failed") ||
			strings.Contains(lowerLine, "cannot") ||
			strings.Contains(lowerLine, "panic") ||
			strings.Contains(lowerLine, "fatal") ||
			strings.Contains(lowerLine, "timeout") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		return strings.Join(candidates, " - ")
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}

	return "Unknown error."
}

// PrintError prints a human-readable error message without exiting.
func PrintError(userMessage string, err error) {
	if err == nil {
		return
	}
	if IsExpectedUserError(err) {
		zap.L().Warn(userMessage, zap.Error(err))
		fmt.Fprintf(os.Stderr, "⚠️  Notice: %s: %v\n", userMessage, err)
	} else {
		zap.L().Error(userMessage, zap.Error(err))
		fmt.Fprintf(os.Stderr, "❌ Error: %s: %v\n", userMessage, err)
	}
}
