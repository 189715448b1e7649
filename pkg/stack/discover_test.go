package stack

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

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

func TestDiscoverExpandsEnvAndPorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docker-compose.yml"), "name: test\n")
	writeFile(t, filepath.Join(root, ".env"), "APP_PORT=5555\n")
	writeFile(t, filepath.Join(root, "services", "app", "service.yaml"), `
name: App
category: other
port: "${APP_PORT:-8000}"
url: "http://localhost:${APP_PORT:-8000}"
healthcheck:
  type: http
  endpoint: "http://localhost:${APP_PORT:-8000}/health"
`)

	st, err := Discover(testRC(), root)
	require.NoError(t, err)

	svc, ok := st.Lookup("app")
	require.True(t, ok)
	assert.Equal(t, 5555, svc.Port)
	assert.Equal(t, "http://localhost:5555", svc.URL)
	require.NotNil(t, svc.Healthcheck)
	assert.Equal(t, "http://localhost:5555/health", svc.Healthcheck.Endpoint)
	assert.Empty(t, svc.Warnings)
}

func TestDiscoverProcessEnvWinsOverDotenv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "METIS_TEST_APP_PORT=1111\n")
	writeFile(t, filepath.Join(root, "services", "app", "service.yaml"), `
name: App
port: "${METIS_TEST_APP_PORT:-8000}"
`)
	t.Setenv("METIS_TEST_APP_PORT", "7777")

	st, err := Discover(testRC(), root)
	require.NoError(t, err)

	svc, _ := st.Lookup("app")
	assert.Equal(t, 7777, svc.Port)
}

func TestDiscoverAppliesDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "my-app", "service.yaml"), "port: 8080\n")

	st, err := Discover(testRC(), root)
	require.NoError(t, err)

	svc, ok := st.Lookup("my-app")
	require.True(t, ok)
	assert.Equal(t, "My-app", svc.Name)
	assert.Equal(t, "other", svc.Category)
	assert.Equal(t, DefaultStartupTime, svc.StartupTime)
	assert.Nil(t, svc.Healthcheck)
}

func TestDiscoverHealthcheckDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "db", "service.yaml"), `
name: Database
category: database
healthcheck:
  command: ["pg_isready", "-U", "postgres"]
`)

	st, err := Discover(testRC(), root)
	require.NoError(t, err)

	svc, _ := st.Lookup("db")
	require.NotNil(t, svc.Healthcheck)
	assert.Equal(t, "http", svc.Healthcheck.Type)
	assert.Equal(t, defaultProbeTimeout, svc.Healthcheck.Timeout)
	assert.Equal(t, []string{"pg_isready", "-U", "postgres"}, svc.Healthcheck.Command)
}

func TestDiscoverHealthcheckTimeout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "db", "service.yaml"), `
name: Database
healthcheck:
  type: exec
  command: ["true"]
  timeout: 12s
`)

	st, err := Discover(testRC(), root)
	require.NoError(t, err)

	svc, _ := st.Lookup("db")
	assert.Equal(t, 12*time.Second, svc.Healthcheck.Timeout)
}

func TestDiscoverWarnings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "app", "service.yaml"), `
name: App
category: mystery
port: "not-a-port"
depends_on: ["ghost"]
`)

	st, err := Discover(testRC(), root)
	require.NoError(t, err)

	svc, _ := st.Lookup("app")
	assert.Equal(t, 0, svc.Port)
	require.Len(t, svc.Warnings, 3)
	assert.Contains(t, svc.Warnings[0], `unknown category "mystery"`)
	assert.Contains(t, svc.Warnings[1], `port "not-a-port" is not numeric`)
	assert.Contains(t, svc.Warnings[2], `unknown service "ghost"`)

	all := st.Warnings(nil)
	require.Len(t, all, 3)
	assert.Contains(t, all[0], "app: ")
}

func TestDiscoverMissingServicesDir(t *testing.T) {
	st, err := Discover(testRC(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, st.Services)
	assert.Empty(t, st.IDs())
}

func TestDiscoverSkipsDirsWithoutDescriptor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "services", "empty"), 0o755))
	writeFile(t, filepath.Join(root, "services", "app", "service.yaml"), "name: App\n")

	st, err := Discover(testRC(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, st.IDs())
}

func TestDiscoverInvalidYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "bad", "service.yaml"), "name: [unterminated\n")

	_, err := Discover(testRC(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Join("services", "bad", "service.yaml"))
}

func TestDiscoverRejectsUnknownHealthcheckType(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "bad", "service.yaml"), `
name: Bad
healthcheck:
  type: carrier-pigeon
`)

	_, err := Discover(testRC(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid descriptor")
}

func TestByCategoryOrdering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services", "pg", "service.yaml"), "name: PostgreSQL\ncategory: database\n")
	writeFile(t, filepath.Join(root, "services", "jupyter", "service.yaml"), "name: Jupyter\ncategory: notebook\n")
	writeFile(t, filepath.Join(root, "services", "redis", "service.yaml"), "name: Redis\ncategory: cache\n")
	writeFile(t, filepath.Join(root, "services", "zzz", "service.yaml"), "name: AAA Tool\ncategory: mystery\n")
	writeFile(t, filepath.Join(root, "services", "duckdb", "service.yaml"), "name: DuckDB\ncategory: database\n")

	st, err := Discover(testRC(), root)
	require.NoError(t, err)

	groups := st.ByCategory()
	require.Len(t, groups, 4)
	assert.Equal(t, "database", groups[0].ID)
	assert.Equal(t, "Databases", groups[0].Name)
	// Name-sorted within the group.
	assert.Equal(t, "DuckDB", groups[0].Services[0].Name)
	assert.Equal(t, "PostgreSQL", groups[0].Services[1].Name)
	assert.Equal(t, "cache", groups[1].ID)
	assert.Equal(t, "notebook", groups[2].ID)
	// Unknown categories collapse into "other", rendered last.
	assert.Equal(t, "other", groups[3].ID)
	assert.Equal(t, "AAA Tool", groups[3].Services[0].Name)
}

func TestUnknown(t *testing.T) {
	st := &Stack{Services: map[string]*Service{"app": {ID: "app"}}}
	assert.Empty(t, st.Unknown([]string{"app"}))
	assert.Equal(t, []string{"ghost"}, st.Unknown([]string{"app", "ghost"}))
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docker-compose.yml"), "name: test\n")
	nested := filepath.Join(root, "services", "app")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindRoot(nested)
	require.NoError(t, err)
	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	resolvedFound, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, resolvedRoot, resolvedFound)
}

func TestFindRootNotFound(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no docker-compose.yml")
}
