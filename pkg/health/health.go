// Package health runs the two check phases behind `metis test`: container
// health state for every running container, then per-service connection
// probes from the stack descriptors.
package health

import (
	"context"
	"net/http"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/container"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/stack"
)

// Kind identifies which check produced a result.
type Kind string

const (
	KindContainer Kind = "container"
	KindHTTP      Kind = "http"
	KindExec      Kind = "exec"
	KindRedis     Kind = "redis"
)

// CheckResult is the outcome of a single check. A Warning result counts as
// neither passed nor failed in the overall verdict.
type CheckResult struct {
	Service  string
	Kind     Kind
	Passed   bool
	Warning  bool
	Detail   string
	Err      error
	Duration time.Duration
}

// Symbol returns the one-character status marker used in summary lines.
func (r CheckResult) Symbol() string {
	switch {
	case r.Warning:
		return "~"
	case r.Passed:
		return "✓"
	default:
		return "✗"
	}
}

// Docker is the subset of the container manager the checker depends on.
type Docker interface {
	Running(ctx context.Context, project string) ([]container.Container, error)
	Health(ctx context.Context, nameOrID string) string
	State(ctx context.Context, nameOrID string) string
	Exec(ctx context.Context, cfg container.ExecConfig) (string, error)
}

// Checker wires the discovered stack to its running containers.
type Checker struct {
	Stack      *stack.Stack
	Docker     Docker
	Project    string
	HTTPClient *http.Client
}

// NewChecker builds a checker for the default compose project.
func NewChecker(st *stack.Stack, docker Docker) *Checker {
	return &Checker{
		Stack:      st,
		Docker:     docker,
		Project:    compose.ProjectName,
		HTTPClient: httpclient.DefaultClient(),
	}
}

// Run executes both phases against the project's running containers. ids
// filters the checks to the named services; empty means all. The returned
// error aggregates every hard failure; warnings never contribute to it.
func (c *Checker) Run(rc *metis_io.RuntimeContext, ids []string) ([]CheckResult, error) {
	logger := otelzap.Ctx(rc.Ctx)

	running, err := c.Docker.Running(rc.Ctx, c.Project)
	if err != nil {
		return nil, cerr.Wrap(err, "list running containers")
	}
	if len(running) == 0 {
		return nil, cerr.New("no services running")
	}

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	include := func(service string) bool {
		return len(selected) == 0 || selected[service]
	}

	var results []CheckResult
	var failures error

	// Phase 1: container state.
	for _, ctr := range running {
		if !include(ctr.Service()) {
			continue
		}
		res := c.checkContainer(rc.Ctx, ctr)
		results = append(results, res)
		if !res.Passed && !res.Warning {
			failures = multierror.Append(failures, cerr.Newf("%s: %s", res.Service, res.Detail))
		}
	}

	// Phase 2: connection probes from the descriptors.
	for _, ctr := range running {
		service := ctr.Service()
		if !include(service) {
			continue
		}
		svc, ok := c.Stack.Lookup(service)
		if !ok || svc.Healthcheck == nil {
			continue
		}
		res, probed := c.probe(rc.Ctx, svc, ctr.Name)
		if !probed {
			continue
		}
		results = append(results, res)
		if !res.Passed && !res.Warning {
			failures = multierror.Append(failures, cerr.Wrapf(res.Err, "%s: %s", res.Service, res.Detail))
		}
	}

	logger.Info("Health checks complete",
		zap.Int("checks", len(results)),
		zap.Bool("passed", failures == nil))

	return results, failures
}

// checkContainer classifies one container's inspect state. Containers that
// run without a configured healthcheck pass with a warning; a healthcheck
// still starting is a warning too, not a failure.
func (c *Checker) checkContainer(ctx context.Context, ctr container.Container) CheckResult {
	start := time.Now()
	res := CheckResult{Service: ctr.Service(), Kind: KindContainer}

	switch c.Docker.Health(ctx, ctr.Name) {
	case container.HealthHealthy:
		res.Passed = true
		res.Detail = "healthy"
	case container.HealthUnhealthy:
		res.Detail = "unhealthy"
	case container.HealthStarting:
		res.Passed = true
		res.Warning = true
		res.Detail = "starting"
	default:
		if state := c.Docker.State(ctx, ctr.Name); state == string(container.StatusRunning) {
			res.Passed = true
			res.Warning = true
			res.Detail = "running (no healthcheck)"
		} else {
			res.Detail = state
		}
	}

	res.Duration = time.Since(start)
	return res
}
