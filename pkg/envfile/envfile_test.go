package envfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRC() *metis_io.RuntimeContext {
	return &metis_io.RuntimeContext{Ctx: context.Background()}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGenerateIncludesFragments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docker-compose.yml"), "name: test\n")
	writeFile(t, filepath.Join(root, "env", "common.env"), "TIMEZONE=UTC\n")
	writeFile(t, filepath.Join(root, "services", "app", "service.yaml"), "name: App\ncategory: other\n")
	writeFile(t, filepath.Join(root, "services", "app", "env.example"), "APP_PORT=9999\n")

	output := filepath.Join(root, ".env.example")
	selected, fragments, err := Generate(testRC(), root, []string{"app"}, output)
	require.NoError(t, err)

	assert.Equal(t, []string{"app"}, selected)
	assert.Equal(t, []string{
		filepath.Join(root, "env", "common.env"),
		filepath.Join(root, "services", "app", "env.example"),
	}, fragments)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "TIMEZONE=UTC")
	assert.Contains(t, string(content), "APP_PORT=9999")
	assert.Contains(t, string(content), "Generated by metis env")
}

func TestGenerateUnknownProfile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docker-compose.yml"), "name: test\n")
	writeFile(t, filepath.Join(root, "services", "app", "service.yaml"), "name: App\n")

	_, _, err := Generate(testRC(), root, []string{"missing"}, filepath.Join(root, ".env.example"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown profiles")
	assert.Contains(t, err.Error(), "missing")
}

func TestGenerateEmptySelectionMeansAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "alpha", "service.yaml"), "name: Alpha\n")
	writeFile(t, filepath.Join(root, "services", "beta", "service.yaml"), "name: Beta\n")
	writeFile(t, filepath.Join(root, "services", "beta", "env.example"), "BETA=1\n")

	selected, fragments, err := Generate(testRC(), root, nil, filepath.Join(root, ".env.example"))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, selected)
	require.Len(t, fragments, 1)
	assert.Contains(t, fragments[0], "beta")
}

func TestGenerateSkipsMissingFragments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "app", "service.yaml"), "name: App\n")

	selected, fragments, err := Generate(testRC(), root, []string{"app"}, filepath.Join(root, ".env.example"))
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, selected)
	assert.Empty(t, fragments)
}

func TestEnsureEnvCreatesFile(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, EnsureEnv(testRC(), root))

	content, err := os.ReadFile(filepath.Join(root, ".env"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("AIRFLOW_UID=%d\n", os.Getuid()), string(content))
}

func TestEnsureEnvDoesNotClobber(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "CUSTOM=kept\n")

	require.NoError(t, EnsureEnv(testRC(), root))

	content, err := os.ReadFile(filepath.Join(root, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM=kept\n", string(content))
}

func TestLoadHandlesCommentsAndQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, `# comment
PLAIN=value
QUOTED="quoted value"
SINGLE='single value'
export EXPORTED=ok
EMPTY=
`)

	env := Load(path)
	assert.Equal(t, "value", env["PLAIN"])
	assert.Equal(t, "quoted value", env["QUOTED"])
	assert.Equal(t, "single value", env["SINGLE"])
	assert.Equal(t, "ok", env["EXPORTED"])
	assert.Equal(t, "", env["EMPTY"])
}

func TestLoadMissingFile(t *testing.T) {
	env := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NotNil(t, env)
	assert.Empty(t, env)
}

func TestMergedLaterFragmentWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	writeFile(t, first, "SHARED=from-first\nONLY_FIRST=1\n")
	writeFile(t, second, "SHARED=from-second\n")

	merged, keys := Merged([]string{first, second})
	assert.Equal(t, "from-second", merged["SHARED"])
	assert.Equal(t, "1", merged["ONLY_FIRST"])
	assert.Equal(t, []string{"ONLY_FIRST", "SHARED"}, keys)
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"POSTGRES_PASSWORD", "hunter2", "********"},
		{"API_SECRET", "abc", "********"},
		{"SETUP_TOKEN", "tok", "********"},
		{"ACCESS_KEY", "k", "********"},
		{"TIMEZONE", "UTC", "UTC"},
		{"APP_PORT", "9999", "9999"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskValue(tt.key, tt.value))
		})
	}
}
