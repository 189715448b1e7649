// pkg/interaction/input_test.go

package interaction

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withStdin redirects os.Stdin to the given content for one test.
func withStdin(t *testing.T, content string) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	orig := os.Stdin
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = orig })
}

func TestPromptInputDefault(t *testing.T) {
	withStdin(t, "\n")
	assert.Equal(t, "fallback", PromptInput("value", "fallback"))
}

func TestPromptInputValue(t *testing.T) {
	withStdin(t, "  typed  \n")
	assert.Equal(t, "typed", PromptInput("value", "fallback"))
}

func TestPromptTypedConfirmation(t *testing.T) {
	withStdin(t, "metis\n")
	assert.True(t, PromptTypedConfirmation("This deletes everything.", "metis"))

	withStdin(t, "METIS\n")
	assert.False(t, PromptTypedConfirmation("This deletes everything.", "metis"))
}
