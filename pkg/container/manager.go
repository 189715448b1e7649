package container

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Manager wraps a Docker API client for container discovery and inspection.
type Manager struct {
	mu     sync.RWMutex
	client *client.Client
}

// NewManager connects to the Docker daemon using environment defaults.
func NewManager() (*Manager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, cerr.WithHint(cerr.Wrap(err, "create docker client"),
			"Ensure the Docker daemon is running and DOCKER_HOST is reachable")
	}
	return &Manager{client: cli}, nil
}

// Close releases the underlying client connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client.Close()
}

// Running lists the project's running containers, name-sorted.
func (m *Manager) Running(ctx context.Context, project string) ([]Container, error) {
	return m.list(ctx, project, false)
}

// All lists every project container including stopped ones, name-sorted.
func (m *Manager) All(ctx context.Context, project string) ([]Container, error) {
	return m.list(ctx, project, true)
}

func (m *Manager) list(ctx context.Context, project string, all bool) ([]Container, error) {
	logger := otelzap.Ctx(ctx)

	filterArgs := filters.NewArgs()
	filterArgs.Add("label", fmt.Sprintf("com.docker.compose.project=%s", project))

	m.mu.RLock()
	summaries, err := m.client.ContainerList(ctx, container.ListOptions{
		All:     all,
		Filters: filterArgs,
	})
	m.mu.RUnlock()

	if err != nil {
		return nil, cerr.Wrap(err, "list containers")
	}

	result := make([]Container, 0, len(summaries))
	for _, s := range summaries {
		result = append(result, toContainer(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	logger.Debug("Containers found by project",
		zap.String("project", project),
		zap.Bool("all", all),
		zap.Int("count", len(result)))

	return result, nil
}

// FindByService finds the project container for one compose service.
func (m *Manager) FindByService(ctx context.Context, project, service string) (*Container, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("label", fmt.Sprintf("com.docker.compose.project=%s", project))
	filterArgs.Add("label", fmt.Sprintf("com.docker.compose.service=%s", service))

	m.mu.RLock()
	summaries, err := m.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	m.mu.RUnlock()

	if err != nil {
		return nil, cerr.Wrap(err, "list containers")
	}
	if len(summaries) == 0 {
		return nil, cerr.Newf("no container for service %q in project %q", service, project)
	}

	// Prefer a running replica when several exist.
	for _, s := range summaries {
		if Status(s.State) == StatusRunning {
			c := toContainer(s)
			return &c, nil
		}
	}
	c := toContainer(summaries[0])
	return &c, nil
}

// Health reports the inspect health status for a container: "none" when no
// healthcheck is configured, "unknown" when inspect fails.
func (m *Manager) Health(ctx context.Context, nameOrID string) string {
	m.mu.RLock()
	info, err := m.client.ContainerInspect(ctx, nameOrID)
	m.mu.RUnlock()

	if err != nil || info.State == nil {
		return HealthUnknown
	}
	if info.State.Health == nil || info.State.Health.Status == "" {
		return HealthNone
	}
	return info.State.Health.Status
}

// State reports the inspect state string, "not found" when inspect fails.
func (m *Manager) State(ctx context.Context, nameOrID string) string {
	m.mu.RLock()
	info, err := m.client.ContainerInspect(ctx, nameOrID)
	m.mu.RUnlock()

	if err != nil || info.State == nil {
		return "not found"
	}
	return info.State.Status
}

func toContainer(s container.Summary) Container {
	return Container{
		ID:         s.ID,
		Name:       cleanName(s.Names),
		Image:      s.Image,
		Status:     Status(s.State),
		StatusText: s.Status,
		Ports:      formatPorts(s.Ports),
		Labels:     s.Labels,
		Created:    time.Unix(s.Created, 0),
	}
}

// formatPorts renders port mappings the way docker ps does, skipping the
// duplicate IPv6 rows.
func formatPorts(ports []container.Port) string {
	var parts []string
	for _, p := range ports {
		if p.IP == "::" {
			continue
		}
		if p.PublicPort > 0 {
			ip := p.IP
			if ip == "" {
				ip = "0.0.0.0"
			}
			parts = append(parts, fmt.Sprintf("%s:%d->%d/%s", ip, p.PublicPort, p.PrivatePort, p.Type))
		} else {
			parts = append(parts, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
		}
	}
	return strings.Join(parts, ", ")
}
