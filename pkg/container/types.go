// Package container provides Docker SDK discovery and inspection for the
// stack's compose-managed containers.
package container

import (
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
)

// Status mirrors the Docker container state string.
type Status string

const (
	StatusCreated    Status = "created"
	StatusRunning    Status = "running"
	StatusRestarting Status = "restarting"
	StatusPaused     Status = "paused"
	StatusExited     Status = "exited"
	StatusDead       Status = "dead"
)

// Health values as reported by inspect. HealthNone means the container has
// no healthcheck configured; HealthUnknown means inspect itself failed.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthStarting  = "starting"
	HealthNone      = "none"
	HealthUnknown   = "unknown"
)

// Container is the stack's view of one Docker container.
type Container struct {
	ID      string
	Name    string
	Image   string
	Status  Status
	// StatusText is docker's human status line ("Up 2 minutes"), shown in
	// the status table.
	StatusText string
	Ports      string
	Labels     map[string]string
	Created    time.Time
}

// IsRunning reports whether the container is currently running.
func (c *Container) IsRunning() bool {
	return c.Status == StatusRunning
}

// ShortID returns the first 12 characters of the container id.
func (c *Container) ShortID() string {
	if len(c.ID) >= 12 {
		return c.ID[:12]
	}
	return c.ID
}

// Service resolves the stack service id: the compose service label when
// present, else derived from the container name.
func (c *Container) Service() string {
	if svc, ok := c.Labels["com.docker.compose.service"]; ok && svc != "" {
		return svc
	}
	return compose.ServiceFromContainer(c.Name)
}

// Project returns the compose project label, empty for non-compose
// containers.
func (c *Container) Project() string {
	return c.Labels["com.docker.compose.project"]
}

func cleanName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}
