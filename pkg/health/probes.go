package health

import (
	"context"
	"io"
	"net/http"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/container"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/stack"
)

// probe runs the descriptor healthcheck for one service. The second return
// is false when the descriptor configures nothing probeable. HTTP failures
// are warnings (the service is usually still starting); exec and redis
// failures are hard failures.
func (c *Checker) probe(ctx context.Context, svc *stack.Service, containerName string) (CheckResult, bool) {
	hc := svc.Healthcheck
	start := time.Now()
	res := CheckResult{Service: svc.ID}

	switch hc.Type {
	case "http":
		if hc.Endpoint == "" {
			return res, false
		}
		res.Kind = KindHTTP
		if err := c.probeHTTP(ctx, hc.Endpoint, hc.Timeout); err != nil {
			res.Warning = true
			res.Detail = "starting up"
			res.Err = err
		} else {
			res.Passed = true
			res.Detail = "accepting connections"
		}

	case "exec":
		if len(hc.Command) == 0 {
			return res, false
		}
		res.Kind = KindExec
		if _, err := c.Docker.Exec(ctx, container.ExecConfig{
			ContainerName: containerName,
			Cmd:           hc.Command,
		}); err != nil {
			res.Detail = "not ready"
			res.Err = err
		} else {
			res.Passed = true
			res.Detail = "accepting connections"
		}

	case "redis":
		if hc.Endpoint == "" {
			return res, false
		}
		res.Kind = KindRedis
		if err := probeRedis(ctx, hc.Endpoint, hc.Timeout); err != nil {
			res.Detail = "not ready"
			res.Err = err
		} else {
			res.Passed = true
			res.Detail = "accepting connections"
		}

	default:
		return res, false
	}

	res.Duration = time.Since(start)
	return res, true
}

func (c *Checker) probeHTTP(ctx context.Context, endpoint string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return cerr.Wrap(err, "build probe request")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return cerr.Newf("endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func probeRedis(ctx context.Context, endpoint string, timeout time.Duration) error {
	opts, err := redis.ParseURL(endpoint)
	if err != nil {
		return cerr.Wrap(err, "parse redis endpoint")
	}

	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
