package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// SleepFunc pauses between poll attempts. Implementations return early with
// the context's error when it is cancelled. Injectable so tests poll
// without real delay.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// healthResponse is the readiness body of a compliant target. The stock BI
// service answers {"status":"ok"} once it accepts requests.
type healthResponse struct {
	Status string `json:"status"`
}

// WaitUntilReady polls the health endpoint until the target answers
// affirmatively, making exactly maxAttempts attempts and sleeping interval
// after each failed one. Connection errors, non-2xx responses and
// non-affirmative bodies all read as "not ready yet"; only exhausting the
// attempts, or caller cancellation, ends the poll, both reported as a
// readiness timeout.
func (o *Orchestrator) WaitUntilReady(rc *metis_io.RuntimeContext, maxAttempts int, interval time.Duration) error {
	logger := otelzap.Ctx(rc.Ctx)

	logger.Info("⏳ Waiting for target to become healthy",
		zap.String("target", o.target.BaseURL),
		zap.Int("max_attempts", maxAttempts),
		zap.Duration("interval", interval))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := rc.Ctx.Err(); err != nil {
			return fail(FailureReadinessTimeout, cerr.Wrap(err, "target did not become healthy"))
		}

		if o.healthy(rc.Ctx) {
			logger.Info("Target is healthy", zap.Int("attempt", attempt))
			return nil
		}
		logger.Debug("Target not ready yet",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts))

		if err := o.sleep(rc.Ctx, interval); err != nil {
			return fail(FailureReadinessTimeout, cerr.Wrap(err, "target did not become healthy"))
		}
	}

	return fail(FailureReadinessTimeout,
		cerr.Newf("target did not become healthy after %d attempts", maxAttempts))
}

// healthy performs one health attempt. Every failure mode is equivalent
// here; the distinction never matters to the poll loop.
func (o *Orchestrator) healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url(o.target.HealthPath), nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false
	}
	return health.Status == "ok"
}
