package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// State is the target's configuration state as reported by its properties
// endpoint.
type State string

const (
	StateAlreadyConfigured State = "already_configured"
	StateNeedsSetup        State = "needs_setup"
)

// Properties is the subset of the session-properties payload the bootstrap
// needs. HasUserSetup is a pointer so an absent flag is distinguishable
// from false.
type Properties struct {
	HasUserSetup *bool  `json:"has-user-setup"`
	SetupToken   string `json:"setup-token"`
}

// CheckConfigurationState issues one GET against the properties endpoint of
// a ready target. Any request failure, malformed body or absent flag is a
// StateCheckAmbiguous failure: the check fails closed rather than assume an
// unconfigured target and risk a duplicate setup.
func (o *Orchestrator) CheckConfigurationState(rc *metis_io.RuntimeContext) (State, *Properties, error) {
	logger := otelzap.Ctx(rc.Ctx)

	body, err := o.getBody(rc.Ctx, o.target.PropertiesPath)
	if err != nil {
		return "", nil, fail(FailureStateCheckAmbiguous,
			cerr.Wrap(err, "fetch session properties"))
	}

	var props Properties
	if err := json.Unmarshal(body, &props); err != nil {
		return "", nil, fail(FailureStateCheckAmbiguous,
			cerr.Wrapf(err, "malformed properties response: %s", truncate(body)))
	}
	if props.HasUserSetup == nil {
		return "", nil, fail(FailureStateCheckAmbiguous,
			cerr.Newf("properties response missing has-user-setup flag: %s", truncate(body)))
	}

	if *props.HasUserSetup {
		logger.Debug("Target reports existing user setup")
		return StateAlreadyConfigured, &props, nil
	}
	logger.Debug("Target reports no user setup yet")
	return StateNeedsSetup, &props, nil
}

// ExtractSetupToken pulls the single-use setup token out of the properties
// payload. An absent or empty token is fatal for the attempt: setup cannot
// proceed without it, and there is no fallback.
func ExtractSetupToken(props *Properties) (string, error) {
	if props == nil || props.SetupToken == "" {
		return "", fail(FailureTokenMissing,
			cerr.New("properties response carries no setup token"))
	}
	return props.SetupToken, nil
}

// getBody performs one GET and returns the response body. Non-2xx statuses
// are errors; the body still travels with the error message for diagnosis.
func (o *Orchestrator) getBody(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url(path), nil)
	if err != nil {
		return nil, cerr.Wrap(err, "build request")
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cerr.Wrap(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, cerr.Newf("unexpected status %d: %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

// truncate keeps error messages readable when a target answers with a large
// HTML error page.
func truncate(body []byte) string {
	const limit = 512
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
