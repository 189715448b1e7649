// Package envfile assembles the .env the compose stack consumes from
// per-service fragments and reads it back for placeholder expansion.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// CommonFragment is the shared fragment every generated env file starts with.
const CommonFragment = "env/common.env"

// Load reads a KEY=VALUE env file. Missing or unreadable files yield an
// empty map so callers can layer defaults without existence checks.
func Load(path string) map[string]string {
	env, err := godotenv.Read(path)
	if err != nil {
		return map[string]string{}
	}
	return env
}

// EnsureEnv creates a minimal .env at the stack root when none exists. The
// compose file needs AIRFLOW_UID to exist before the first up.
func EnsureEnv(rc *metis_io.RuntimeContext, root string) error {
	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return cerr.Wrapf(err, "stat %s", path)
	}

	content := fmt.Sprintf("AIRFLOW_UID=%d\n", os.Getuid())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return cerr.Wrapf(err, "write %s", path)
	}

	otelzap.Ctx(rc.Ctx).Info("📝 Created .env", zap.String("path", path))
	return nil
}

// Generate assembles an env file for the selected services from
// env/common.env plus each services/<id>/env.example fragment, in that
// order. An empty selection means every service that has a descriptor.
// Returns the resolved selection and the fragment paths that were included.
func Generate(rc *metis_io.RuntimeContext, root string, profiles []string, outputPath string) ([]string, []string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	known, err := serviceIDs(root)
	if err != nil {
		return nil, nil, err
	}

	selected := profiles
	if len(selected) == 0 {
		selected = known
	} else {
		var unknown []string
		for _, id := range selected {
			if !contains(known, id) {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			return nil, nil, cerr.Newf("Unknown profiles: %s", strings.Join(unknown, ", "))
		}
	}

	var fragments []string
	if common := filepath.Join(root, filepath.FromSlash(CommonFragment)); fileExists(common) {
		fragments = append(fragments, common)
	}
	for _, id := range sorted(selected) {
		if frag := filepath.Join(root, "services", id, "env.example"); fileExists(frag) {
			fragments = append(fragments, frag)
		}
	}

	content, err := render(root, fragments)
	if err != nil {
		return nil, nil, err
	}

	if err := writeAtomic(outputPath, content); err != nil {
		return nil, nil, err
	}

	logger.Info("📝 Generated env file",
		zap.String("path", outputPath),
		zap.Int("fragments", len(fragments)))

	return selected, fragments, nil
}

// Merged parses the concatenated fragments into a single key set, later
// fragments winning. Used for display; the generated file itself keeps the
// raw fragment text so comments and ${...} references survive.
func Merged(fragments []string) (map[string]string, []string) {
	merged := make(map[string]string)
	for _, frag := range fragments {
		for k, v := range Load(frag) {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return merged, keys
}

// MaskValue hides secret-looking values for display.
func MaskValue(key, value string) string {
	upper := strings.ToUpper(key)
	for _, marker := range []string{"PASSWORD", "SECRET", "TOKEN", "KEY"} {
		if strings.Contains(upper, marker) {
			return "********"
		}
	}
	return value
}

func render(root string, fragments []string) (string, error) {
	var b strings.Builder
	b.WriteString("# Generated by metis env. Do not edit; edit the fragments instead.\n")

	for _, frag := range fragments {
		raw, err := os.ReadFile(frag)
		if err != nil {
			return "", cerr.Wrapf(err, "read fragment %s", frag)
		}

		rel, err := filepath.Rel(root, frag)
		if err != nil {
			rel = frag
		}

		b.WriteString("\n# --- " + filepath.ToSlash(rel) + " ---\n")
		b.Write(raw)
		if len(raw) > 0 && raw[len(raw)-1] != '\n' {
			b.WriteByte('\n')
		}
	}

	// Parse what we rendered so a broken fragment fails generation instead
	// of producing an env file compose cannot read.
	if _, err := godotenv.Unmarshal(b.String()); err != nil {
		return "", cerr.Wrap(err, "parse generated env content")
	}

	return b.String(), nil
}

func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return cerr.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return cerr.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return cerr.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return cerr.Wrapf(err, "chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return cerr.Wrapf(err, "rename %s to %s", tmpName, path)
	}
	return nil
}

// serviceIDs lists the directories under services/ that carry a descriptor.
func serviceIDs(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, "services"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, cerr.Wrapf(err, "read services directory under %s", root)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if fileExists(filepath.Join(root, "services", entry.Name(), "service.yaml")) {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func sorted(list []string) []string {
	out := append([]string{}, list...)
	sort.Strings(out)
	return out
}
