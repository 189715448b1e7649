package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/envfile"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// descriptor is the raw service.yaml shape before expansion. Port is a
// string so descriptors can write port: "${APP_PORT:-8000}".
type descriptor struct {
	Name        string          `yaml:"name"`
	Category    string          `yaml:"category"`
	Port        string          `yaml:"port"`
	URL         string          `yaml:"url"`
	Credentials string          `yaml:"credentials"`
	DependsOn   []string        `yaml:"depends_on"`
	StartupTime int             `yaml:"startup_time"`
	Description string          `yaml:"description"`
	Healthcheck *healthcheckDef `yaml:"healthcheck"`
}

type healthcheckDef struct {
	Type     string   `yaml:"type"`
	Endpoint string   `yaml:"endpoint"`
	Command  []string `yaml:"command"`
	Timeout  string   `yaml:"timeout"`
}

const defaultProbeTimeout = 5 * time.Second

// FindRoot walks upward from start (the working directory when empty) until
// it finds the directory holding docker-compose.yml.
func FindRoot(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", cerr.Wrap(err, "resolve working directory")
		}
		start = wd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", cerr.Wrapf(err, "resolve stack dir %s", start)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "docker-compose.yml")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", cerr.Newf("no docker-compose.yml found above %s", start)
		}
		dir = parent
	}
}

// Discover scans services/*/service.yaml under root and returns the stack.
// A missing services directory yields an empty stack, not an error.
func Discover(rc *metis_io.RuntimeContext, root string) (*Stack, error) {
	logger := otelzap.Ctx(rc.Ctx)

	env := mergedEnv(root)
	servicesDir := filepath.Join(root, "services")

	entries, err := os.ReadDir(servicesDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No services directory, stack is empty", zap.String("root", root))
			return &Stack{Root: root, Services: map[string]*Service{}}, nil
		}
		return nil, cerr.Wrapf(err, "read services directory %s", servicesDir)
	}

	services := make(map[string]*Service)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(servicesDir, entry.Name())
		descPath := filepath.Join(dir, "service.yaml")
		raw, err := os.ReadFile(descPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, cerr.Wrapf(err, "read descriptor %s", descPath)
		}

		var desc descriptor
		if err := yaml.Unmarshal(raw, &desc); err != nil {
			return nil, cerr.Wrapf(err, "parse descriptor %s", descPath)
		}

		svc := desc.resolve(entry.Name(), dir, env)
		if err := validator.New().Struct(svc); err != nil {
			return nil, cerr.Wrapf(err, "invalid descriptor %s", descPath)
		}

		services[svc.ID] = svc
	}

	// depends_on can only be checked once the full set is known.
	for _, svc := range services {
		for _, dep := range svc.DependsOn {
			if _, ok := services[dep]; !ok {
				svc.Warnings = append(svc.Warnings, fmt.Sprintf("depends_on references unknown service %q", dep))
			}
		}
	}

	logger.Debug("Service discovery complete",
		zap.String("root", root),
		zap.Int("services", len(services)))

	return &Stack{Root: root, Services: services}, nil
}

// resolve expands placeholders and applies defaults, turning the raw
// descriptor into a Service. Non-fatal problems become warnings.
func (d *descriptor) resolve(id, dir string, env map[string]string) *Service {
	svc := &Service{
		ID:          id,
		Name:        ExpandEnv(d.Name, env),
		Category:    d.Category,
		URL:         ExpandEnv(d.URL, env),
		Credentials: ExpandEnv(d.Credentials, env),
		DependsOn:   expandSlice(d.DependsOn, env),
		Description: ExpandEnv(d.Description, env),
		Dir:         dir,
	}

	if svc.Name == "" {
		svc.Name = titleCase(id)
	}
	if svc.Category == "" {
		svc.Category = "other"
	} else if _, known := categoryNames[svc.Category]; !known {
		svc.Warnings = append(svc.Warnings, fmt.Sprintf("unknown category %q", svc.Category))
	}

	if port := strings.TrimSpace(ExpandEnv(d.Port, env)); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			svc.Warnings = append(svc.Warnings, fmt.Sprintf("port %q is not numeric", port))
		} else {
			svc.Port = n
		}
	}

	svc.StartupTime = DefaultStartupTime
	if d.StartupTime > 0 {
		svc.StartupTime = time.Duration(d.StartupTime) * time.Second
	}

	if d.Healthcheck != nil {
		hc := &Healthcheck{
			Type:     d.Healthcheck.Type,
			Endpoint: ExpandEnv(d.Healthcheck.Endpoint, env),
			Command:  expandSlice(d.Healthcheck.Command, env),
			Timeout:  defaultProbeTimeout,
		}
		if hc.Type == "" {
			hc.Type = "http"
		}
		if raw := d.Healthcheck.Timeout; raw != "" {
			t, err := time.ParseDuration(raw)
			if err != nil {
				svc.Warnings = append(svc.Warnings, fmt.Sprintf("healthcheck timeout %q is not a duration", raw))
			} else {
				hc.Timeout = t
			}
		}
		svc.Healthcheck = hc
	}

	return svc
}

// mergedEnv layers the process environment over the stack's .env file, so
// exported variables win over checked-in defaults.
func mergedEnv(root string) map[string]string {
	env := envfile.Load(filepath.Join(root, ".env"))
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
