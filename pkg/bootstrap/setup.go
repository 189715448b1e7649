package bootstrap

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

type setupUser struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	SiteName  string `json:"site_name"`
}

type setupPrefs struct {
	SiteName      string `json:"site_name"`
	AllowTracking bool   `json:"allow_tracking"`
}

type setupRequest struct {
	Token string     `json:"token"`
	User  setupUser  `json:"user"`
	Prefs setupPrefs `json:"prefs"`
}

// setupResponse keeps the created-resource id raw: targets answer with a
// number or a UUID string depending on version.
type setupResponse struct {
	ID json.RawMessage `json:"id"`
}

// SubmitSetup performs the single setup POST, consuming the token. The call
// is never retried: the token is single-use, and a retry after an ambiguous
// failure risks invalidating it — failures surface to the caller instead.
// Success means the response body carries a created-resource id; anything
// else is SetupRejected with the raw body as detail.
func (o *Orchestrator) SubmitSetup(rc *metis_io.RuntimeContext, token string, identity Identity) (json.RawMessage, error) {
	logger := otelzap.Ctx(rc.Ctx)

	payload := setupRequest{
		Token: token,
		User: setupUser{
			Email:     identity.Email,
			Password:  identity.Password,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			SiteName:  identity.SiteName,
		},
		Prefs: setupPrefs{
			SiteName:      identity.SiteName,
			AllowTracking: false,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fail(FailureTransport, cerr.Wrap(err, "encode setup request"))
	}

	req, err := http.NewRequestWithContext(rc.Ctx, http.MethodPost, o.url(o.target.SetupPath), bytes.NewReader(body))
	if err != nil {
		return nil, fail(FailureTransport, cerr.Wrap(err, "build setup request"))
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("Submitting one-time setup",
		zap.String("target", o.target.BaseURL),
		zap.String("admin_email", identity.Email))

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fail(FailureTransport, cerr.Wrap(err, "setup request failed"))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(FailureTransport, cerr.Wrap(err, "read setup response"))
	}

	var parsed setupResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || !hasID(parsed.ID) {
		return nil, fail(FailureSetupRejected,
			cerr.Newf("setup rejected (status %d): %s", resp.StatusCode, truncate(respBody)))
	}

	logger.Info("Setup accepted", zap.ByteString("id", parsed.ID))
	return parsed.ID, nil
}

// hasID reports whether the response carried a real identifier. JSON null
// counts as absent.
func hasID(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
