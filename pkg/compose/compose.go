// Package compose wraps the docker compose CLI for the analytics stack.
// The compose file stays the source of truth; nothing here re-implements
// compose semantics through the SDK.
package compose

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ProjectName is the compose project label and container-name prefix for
// every service in the stack.
const ProjectName = "analytical-ecosystem"

// BaseFile is the root compose file; per-service fragments layer on top.
const BaseFile = "docker-compose.yml"

const (
	longTimeout  = 30 * time.Minute // up/build pull images
	shortTimeout = 5 * time.Minute
)

// Compose issues docker compose commands from the stack root.
type Compose struct {
	Root string
}

func New(root string) *Compose {
	return &Compose{Root: root}
}

// ContainerName maps a service id to its compose container name.
func ContainerName(service string) string {
	return ProjectName + "-" + service + "-1"
}

// ServiceFromContainer extracts the service id from a compose container
// name, tolerating hyphenated service ids.
func ServiceFromContainer(name string) string {
	name = strings.TrimPrefix(name, ProjectName+"-")
	if i := strings.LastIndex(name, "-"); i >= 0 {
		return name[:i]
	}
	return name
}

// command resolves the compose binary: the docker CLI compose plugin when
// available, otherwise the standalone docker-compose.
func command() (string, []string, error) {
	if _, err := exec.LookPath("docker"); err == nil {
		return "docker", []string{"compose"}, nil
	}
	if _, err := exec.LookPath("docker-compose"); err == nil {
		return "docker-compose", nil, nil
	}
	return "", nil, metis_err.NewDependencyError("docker compose", "managing the stack",
		"Install Docker Desktop, or the compose plugin: https://docs.docker.com/compose/install/")
}

// BuildFileArgs assembles the -f layering: the base compose file plus each
// selected service's services/<id>/compose.yaml fragment when it exists.
func BuildFileArgs(root string, services []string) []string {
	args := []string{"-f", BaseFile}
	for _, id := range services {
		fragment := filepath.Join("services", id, "compose.yaml")
		if fileExists(filepath.Join(root, fragment)) {
			args = append(args, "-f", filepath.ToSlash(fragment))
		}
	}
	return args
}

// BuildProfileArgs maps selected service ids to --profile flags.
func BuildProfileArgs(profiles []string) []string {
	var args []string
	for _, p := range profiles {
		args = append(args, "--profile", p)
	}
	return args
}

func (c *Compose) composeArgs(services []string, verb ...string) []string {
	args := BuildFileArgs(c.Root, services)
	args = append(args, BuildProfileArgs(services)...)
	return append(args, verb...)
}

func (c *Compose) run(rc *metis_io.RuntimeContext, timeout time.Duration, services []string, verb ...string) error {
	bin, base, err := command()
	if err != nil {
		return err
	}

	args := append(base, c.composeArgs(services, verb...)...)
	otelzap.Ctx(rc.Ctx).Debug("Running compose command",
		zap.String("binary", bin),
		zap.Strings("args", args))

	_, err = execute.Run(rc.Ctx, execute.Options{
		Command: bin,
		Args:    args,
		Dir:     c.Root,
		Timeout: timeout,
	})
	return err
}

// Up starts the selected services detached, optionally building images.
func (c *Compose) Up(rc *metis_io.RuntimeContext, services []string, build bool) error {
	verb := []string{"up", "-d"}
	if build {
		verb = append(verb, "--build")
	}
	return cerr.WithHint(c.run(rc, longTimeout, services, verb...),
		"Check `docker compose logs` for the failing service")
}

// Stop brings the selected services down, keeping volumes.
func (c *Compose) Stop(rc *metis_io.RuntimeContext, services []string) error {
	return c.run(rc, shortTimeout, services, "down")
}

// Restart restarts the selected services in place.
func (c *Compose) Restart(rc *metis_io.RuntimeContext, services []string) error {
	return c.run(rc, shortTimeout, services, "restart")
}

// Build rebuilds the selected service images.
func (c *Compose) Build(rc *metis_io.RuntimeContext, services []string) error {
	return c.run(rc, longTimeout, services, "build")
}

// Clean stops the selected services and removes their volumes.
func (c *Compose) Clean(rc *metis_io.RuntimeContext, services []string) error {
	return c.run(rc, shortTimeout, services, "down", "-v")
}

// Nuke removes containers, volumes, images and the project network.
func (c *Compose) Nuke(rc *metis_io.RuntimeContext, services []string) error {
	if err := c.run(rc, longTimeout, services, "down", "-v", "--rmi", "all", "--remove-orphans"); err != nil {
		return err
	}

	logger := otelzap.Ctx(rc.Ctx)

	// Sweep anything compose missed. Both steps are best-effort: the
	// resources may already be gone.
	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: "docker",
		Args:    []string{"volume", "ls", "-q", "-f", "name=" + ProjectName},
		Capture: true,
	})
	if err == nil {
		for _, vol := range strings.Fields(out) {
			if _, err := execute.Run(rc.Ctx, execute.Options{
				Command: "docker",
				Args:    []string{"volume", "rm", vol},
				Capture: true,
			}); err != nil {
				logger.Debug("Volume already removed", zap.String("volume", vol), zap.Error(err))
			}
		}
	}

	if _, err := execute.Run(rc.Ctx, execute.Options{
		Command: "docker",
		Args:    []string{"network", "rm", ProjectName},
		Capture: true,
	}); err != nil {
		logger.Debug("Network already removed", zap.String("network", ProjectName), zap.Error(err))
	}

	return nil
}

// Logs streams logs for the selection; service narrows to one service.
func (c *Compose) Logs(rc *metis_io.RuntimeContext, services []string, service string, follow bool) error {
	verb := []string{"logs"}
	if follow {
		verb = append(verb, "-f")
	}
	if service != "" {
		verb = append(verb, service)
	}

	bin, base, err := command()
	if err != nil {
		return err
	}
	args := append(base, c.composeArgs(services, verb...)...)

	if follow {
		// Follow mode streams until interrupted; inherit stdio.
		return execute.RunInteractive(rc.Ctx, c.Root, bin, args...)
	}

	_, err = execute.Run(rc.Ctx, execute.Options{
		Command: bin,
		Args:    args,
		Dir:     c.Root,
		Timeout: shortTimeout,
	})
	return err
}

// Shell opens an interactive shell in the named container, preferring bash.
func Shell(rc *metis_io.RuntimeContext, containerName string) error {
	if err := execute.RunInteractive(rc.Ctx, "", "docker", "exec", "-it", containerName, "/bin/bash"); err == nil {
		return nil
	}
	return execute.RunInteractive(rc.Ctx, "", "docker", "exec", "-it", containerName, "/bin/sh")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
