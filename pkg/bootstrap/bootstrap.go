// Package bootstrap drives the one-time initialization of a freshly started
// HTTP service: poll it until healthy, ask whether an admin account already
// exists, and if not, create one through the service's single-use setup
// token. Written against the stock BI dashboard's API, but any service that
// exposes a health endpoint, an "already set up" flag plus token, and a
// one-shot setup endpoint works the same way.
//
// Rerunning against a configured target is the expected steady state: the
// orchestrator detects it and skips without side effects.
package bootstrap

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// Paths of the stock BI dashboard API, used when the target leaves them
// empty.
const (
	DefaultHealthPath     = "/api/health"
	DefaultPropertiesPath = "/api/session/properties"
	DefaultSetupPath      = "/api/setup"
)

// Polling defaults: 60 attempts at 5s covers the slowest cold start seen in
// the stack with headroom.
const (
	DefaultMaxAttempts = 60
	DefaultInterval    = 5 * time.Second
)

// Admin identity defaults applied when the caller leaves fields empty.
const (
	DefaultEmail     = "admin@example.com"
	DefaultPassword  = "metis-admin-1"
	DefaultFirstName = "Admin"
	DefaultLastName  = "User"
	DefaultSiteName  = "Analytical Ecosystem"
)

// Target identifies the service instance to bootstrap.
type Target struct {
	BaseURL        string `validate:"required,url"`
	HealthPath     string
	PropertiesPath string
	SetupPath      string
}

func (t Target) withDefaults() Target {
	t.BaseURL = strings.TrimRight(t.BaseURL, "/")
	if t.HealthPath == "" {
		t.HealthPath = DefaultHealthPath
	}
	if t.PropertiesPath == "" {
		t.PropertiesPath = DefaultPropertiesPath
	}
	if t.SetupPath == "" {
		t.SetupPath = DefaultSetupPath
	}
	return t
}

// Identity is the admin account created when setup runs. It is an explicit
// input: the orchestrator never reads process environment for defaults.
type Identity struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	SiteName  string
}

func (id Identity) withDefaults() Identity {
	if id.Email == "" {
		id.Email = DefaultEmail
	}
	if id.Password == "" {
		id.Password = DefaultPassword
	}
	if id.FirstName == "" {
		id.FirstName = DefaultFirstName
	}
	if id.LastName == "" {
		id.LastName = DefaultLastName
	}
	if id.SiteName == "" {
		id.SiteName = DefaultSiteName
	}
	return id
}

// Outcome is the terminal verdict of one bootstrap attempt.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// FailureKind classifies terminal failures.
type FailureKind string

const (
	FailureReadinessTimeout    FailureKind = "readiness_timeout"
	FailureStateCheckAmbiguous FailureKind = "state_check_ambiguous"
	FailureTokenMissing        FailureKind = "token_missing"
	FailureSetupRejected       FailureKind = "setup_rejected"
	FailureTransport           FailureKind = "transport_error"
)

// Failure is a terminal bootstrap error tagged with its kind. The upstream
// response body, where one exists, is preserved in the message.
type Failure struct {
	Kind  FailureKind
	cause error
}

func (f *Failure) Error() string { return f.cause.Error() }
func (f *Failure) Unwrap() error { return f.cause }

func fail(kind FailureKind, cause error) *Failure {
	return &Failure{Kind: kind, cause: cause}
}

// Result is the caller-visible outcome. Skipped and Succeeded both map to a
// zero exit; every failure carries its kind and a human-readable detail.
type Result struct {
	Outcome Outcome
	Detail  string
	Failure FailureKind
	// ID is the created-resource identifier from a successful setup call,
	// kept raw because targets return numbers or UUID strings.
	ID json.RawMessage
}

// Config assembles an Orchestrator. Zero values take the package defaults.
type Config struct {
	Target      Target
	MaxAttempts int
	Interval    time.Duration

	// HTTPClient and Sleep are injectable for tests.
	HTTPClient *http.Client
	Sleep      SleepFunc
}

// Orchestrator bootstraps one target. Values are independent: separate
// targets may be bootstrapped concurrently, each with its own Orchestrator.
type Orchestrator struct {
	target      Target
	maxAttempts int
	interval    time.Duration
	client      *http.Client
	sleep       SleepFunc
}

// New validates the config and applies defaults.
func New(cfg Config) (*Orchestrator, error) {
	cfg.Target = cfg.Target.withDefaults()
	if err := validator.New().Struct(cfg.Target); err != nil {
		return nil, cerr.Wrap(err, "invalid bootstrap target")
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxAttempts < 1 {
		return nil, cerr.Newf("max attempts must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Interval < 0 {
		return nil, cerr.Newf("poll interval must be positive, got %s", cfg.Interval)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpclient.DefaultClient()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = defaultSleep
	}
	return &Orchestrator{
		target:      cfg.Target,
		maxAttempts: cfg.MaxAttempts,
		interval:    cfg.Interval,
		client:      cfg.HTTPClient,
		sleep:       cfg.Sleep,
	}, nil
}

// Bootstrap runs the full sequence against the target: readiness poll,
// configuration-state check, token extraction, setup submission. Strictly
// linear and single-pass; every path terminates in a Result.
func (o *Orchestrator) Bootstrap(rc *metis_io.RuntimeContext, identity Identity) Result {
	logger := otelzap.Ctx(rc.Ctx)
	identity = identity.withDefaults()

	if err := o.WaitUntilReady(rc, o.maxAttempts, o.interval); err != nil {
		return failedResult(err)
	}

	state, props, err := o.CheckConfigurationState(rc)
	if err != nil {
		return failedResult(err)
	}
	if state == StateAlreadyConfigured {
		logger.Info("Target already configured, skipping setup",
			zap.String("target", o.target.BaseURL))
		return Result{Outcome: OutcomeSkipped, Detail: "already configured"}
	}

	token, err := ExtractSetupToken(props)
	if err != nil {
		return failedResult(err)
	}

	id, err := o.SubmitSetup(rc, token, identity)
	if err != nil {
		return failedResult(err)
	}

	logger.Info("Bootstrap complete",
		zap.String("target", o.target.BaseURL),
		zap.String("admin_email", identity.Email))
	return Result{Outcome: OutcomeSucceeded, Detail: "setup complete", ID: id}
}

func failedResult(err error) Result {
	res := Result{Outcome: OutcomeFailed, Detail: err.Error()}
	var f *Failure
	if cerr.As(err, &f) {
		res.Failure = f.Kind
	}
	return res
}

func (o *Orchestrator) url(path string) string {
	return o.target.BaseURL + path
}
