package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// callLog counts the requests a scripted target receives and keeps the raw
// setup bodies for wire-shape assertions.
type callLog struct {
	mu          sync.Mutex
	health      int
	properties  int
	setup       int
	setupBodies [][]byte
}

func (l *callLog) healthCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.health
}

func (l *callLog) propertiesCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.properties
}

func (l *callLog) setupCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setup
}

func (l *callLog) lastSetupBody() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.setupBodies) == 0 {
		return nil
	}
	return l.setupBodies[len(l.setupBodies)-1]
}

// sleepRecorder is an injectable sleep that never blocks.
type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slept = append(s.slept, d)
	return ctx.Err()
}

func (s *sleepRecorder) calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.slept...)
}

func testRC() *metis_io.RuntimeContext {
	return &metis_io.RuntimeContext{Ctx: context.Background()}
}

// stockHandlers wires the three stock endpoints onto a mux. propsBody and
// setup behavior are per-test; health always answers affirmatively.
func stockHandlers(log *callLog, propsStatus int, propsBody string, setupStatus int, setupBody string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		log.mu.Lock()
		log.health++
		log.mu.Unlock()
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/session/properties", func(w http.ResponseWriter, _ *http.Request) {
		log.mu.Lock()
		log.properties++
		log.mu.Unlock()
		w.WriteHeader(propsStatus)
		fmt.Fprint(w, propsBody)
	})
	mux.HandleFunc("/api/setup", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.mu.Lock()
		log.setup++
		log.setupBodies = append(log.setupBodies, body)
		log.mu.Unlock()
		w.WriteHeader(setupStatus)
		fmt.Fprint(w, setupBody)
	})
	return mux
}

func newOrchestrator(t *testing.T, srv *httptest.Server, attempts int, sleep SleepFunc) *Orchestrator {
	t.Helper()
	o, err := New(Config{
		Target:      Target{BaseURL: srv.URL},
		MaxAttempts: attempts,
		Interval:    time.Second,
		HTTPClient:  srv.Client(),
		Sleep:       sleep,
	})
	require.NoError(t, err)
	return o
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid bootstrap target")

	_, err = New(Config{Target: Target{BaseURL: "not a url"}})
	require.Error(t, err)

	_, err = New(Config{Target: Target{BaseURL: "http://localhost:3000"}, MaxAttempts: -1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "max attempts")

	_, err = New(Config{Target: Target{BaseURL: "http://localhost:3000"}, Interval: -time.Second})
	require.Error(t, err)
	assert.ErrorContains(t, err, "interval")

	o, err := New(Config{Target: Target{BaseURL: "http://localhost:3000/"}})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api/health", o.url(o.target.HealthPath))
	assert.Equal(t, DefaultMaxAttempts, o.maxAttempts)
	assert.Equal(t, DefaultInterval, o.interval)
}

func TestBootstrapPerformsSetupOnFreshTarget(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(stockHandlers(log,
		http.StatusOK, `{"has-user-setup": false, "setup-token": "abc123"}`,
		http.StatusOK, `{"id": 7}`))
	defer srv.Close()

	sleeper := &sleepRecorder{}
	o := newOrchestrator(t, srv, 3, sleeper.sleep)

	identity := Identity{
		Email:     "boss@example.org",
		Password:  "s3cret-enough",
		FirstName: "Ada",
		LastName:  "Lovelace",
		SiteName:  "Example Lab",
	}
	res := o.Bootstrap(testRC(), identity)

	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, json.RawMessage("7"), res.ID)
	assert.Empty(t, res.Failure)

	// Healthy on the first attempt: one health call, no sleeping.
	assert.Equal(t, 1, log.healthCalls())
	assert.Empty(t, sleeper.calls())
	assert.Equal(t, 1, log.propertiesCalls())
	require.Equal(t, 1, log.setupCalls())

	var got map[string]any
	require.NoError(t, json.Unmarshal(log.lastSetupBody(), &got))
	assert.Equal(t, "abc123", got["token"])

	user, ok := got["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boss@example.org", user["email"])
	assert.Equal(t, "s3cret-enough", user["password"])
	assert.Equal(t, "Ada", user["first_name"])
	assert.Equal(t, "Lovelace", user["last_name"])
	assert.Equal(t, "Example Lab", user["site_name"])

	prefs, ok := got["prefs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Example Lab", prefs["site_name"])
	assert.Equal(t, false, prefs["allow_tracking"])
}

func TestBootstrapAppliesIdentityDefaults(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(stockHandlers(log,
		http.StatusOK, `{"has-user-setup": false, "setup-token": "tok"}`,
		http.StatusOK, `{"id": 1}`))
	defer srv.Close()

	o := newOrchestrator(t, srv, 1, (&sleepRecorder{}).sleep)
	res := o.Bootstrap(testRC(), Identity{})
	require.Equal(t, OutcomeSucceeded, res.Outcome)

	var got map[string]any
	require.NoError(t, json.Unmarshal(log.lastSetupBody(), &got))
	user := got["user"].(map[string]any)
	assert.Equal(t, DefaultEmail, user["email"])
	assert.Equal(t, DefaultPassword, user["password"])
	assert.Equal(t, DefaultFirstName, user["first_name"])
	assert.Equal(t, DefaultLastName, user["last_name"])
	assert.Equal(t, DefaultSiteName, user["site_name"])
}

func TestBootstrapSkipsConfiguredTarget(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(stockHandlers(log,
		http.StatusOK, `{"has-user-setup": true}`,
		http.StatusOK, `{"id": 1}`))
	defer srv.Close()

	o := newOrchestrator(t, srv, 3, (&sleepRecorder{}).sleep)

	// Rerunning against a configured target must stay side-effect free.
	for i := 0; i < 2; i++ {
		res := o.Bootstrap(testRC(), Identity{})
		assert.Equal(t, OutcomeSkipped, res.Outcome)
		assert.Equal(t, "already configured", res.Detail)
	}
	assert.Equal(t, 2, log.propertiesCalls())
	assert.Equal(t, 0, log.setupCalls())
}

func TestWaitUntilReadyMakesExactlyNAttempts(t *testing.T) {
	for _, attempts := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("attempts=%d", attempts), func(t *testing.T) {
			log := &callLog{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				log.mu.Lock()
				log.health++
				log.mu.Unlock()
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer srv.Close()

			sleeper := &sleepRecorder{}
			o := newOrchestrator(t, srv, attempts, sleeper.sleep)

			err := o.WaitUntilReady(testRC(), attempts, time.Second)
			require.Error(t, err)

			var f *Failure
			require.ErrorAs(t, err, &f)
			assert.Equal(t, FailureReadinessTimeout, f.Kind)
			assert.Equal(t, attempts, log.healthCalls())
			assert.Len(t, sleeper.calls(), attempts)
		})
	}
}

func TestBootstrapNeverHealthyTimesOut(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		log.mu.Lock()
		log.health++
		log.mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sleeper := &sleepRecorder{}
	o := newOrchestrator(t, srv, 3, sleeper.sleep)

	res := o.Bootstrap(testRC(), Identity{})

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, FailureReadinessTimeout, res.Failure)
	assert.Contains(t, res.Detail, "target did not become healthy")
	assert.Equal(t, 3, log.healthCalls())
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, sleeper.calls())
}

func TestWaitUntilReadyRecoversAfterFailures(t *testing.T) {
	var mu sync.Mutex
	attempt := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		attempt++
		n := attempt
		mu.Unlock()
		switch n {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			// 2xx but not the affirmative marker: still not ready.
			fmt.Fprint(w, `{"status":"initializing"}`)
		default:
			fmt.Fprint(w, `{"status":"ok"}`)
		}
	}))
	defer srv.Close()

	sleeper := &sleepRecorder{}
	o := newOrchestrator(t, srv, 10, sleeper.sleep)

	require.NoError(t, o.WaitUntilReady(testRC(), 10, time.Second))

	mu.Lock()
	assert.Equal(t, 3, attempt)
	mu.Unlock()
	assert.Len(t, sleeper.calls(), 2)
}

func TestWaitUntilReadyCancelledDuringSleep(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		log.mu.Lock()
		log.health++
		log.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancellingSleep := func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	o := newOrchestrator(t, srv, 60, cancellingSleep)
	err := o.WaitUntilReady(&metis_io.RuntimeContext{Ctx: ctx}, 60, time.Second)

	require.Error(t, err)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureReadinessTimeout, f.Kind)
	assert.Contains(t, err.Error(), "target did not become healthy")
	// Aborted on the first sleep, nowhere near the 60 allowed attempts.
	assert.Equal(t, 1, log.healthCalls())
}

func TestBootstrapTokenMissing(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(stockHandlers(log,
		http.StatusOK, `{"has-user-setup": false}`,
		http.StatusOK, `{"id": 1}`))
	defer srv.Close()

	o := newOrchestrator(t, srv, 1, (&sleepRecorder{}).sleep)
	res := o.Bootstrap(testRC(), Identity{})

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, FailureTokenMissing, res.Failure)
	assert.Equal(t, 0, log.setupCalls())
}

func TestBootstrapAmbiguousStateFailsClosed(t *testing.T) {
	tests := []struct {
		name        string
		propsStatus int
		propsBody   string
	}{
		{"malformed body", http.StatusOK, `<html>boom</html>`},
		{"flag absent", http.StatusOK, `{"version": "v0.50"}`},
		{"server error", http.StatusInternalServerError, `{"message":"on fire"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &callLog{}
			srv := httptest.NewServer(stockHandlers(log,
				tt.propsStatus, tt.propsBody,
				http.StatusOK, `{"id": 1}`))
			defer srv.Close()

			o := newOrchestrator(t, srv, 1, (&sleepRecorder{}).sleep)
			res := o.Bootstrap(testRC(), Identity{})

			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.Equal(t, FailureStateCheckAmbiguous, res.Failure)
			// Never guess NeedsSetup from ambiguous data.
			assert.Equal(t, 0, log.setupCalls())
		})
	}
}

func TestBootstrapSetupRejected(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(stockHandlers(log,
		http.StatusOK, `{"has-user-setup": false, "setup-token": "abc123"}`,
		http.StatusBadRequest, `{"errors":{"token":"token does not match"}}`))
	defer srv.Close()

	o := newOrchestrator(t, srv, 1, (&sleepRecorder{}).sleep)
	res := o.Bootstrap(testRC(), Identity{})

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, FailureSetupRejected, res.Failure)
	assert.Contains(t, res.Detail, "token does not match")
	// Single-use token: the rejected call is never retried.
	assert.Equal(t, 1, log.setupCalls())
}

func TestBootstrapSetupResponseWithoutID(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no id field", `{"ok": true}`},
		{"null id", `{"id": null}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &callLog{}
			srv := httptest.NewServer(stockHandlers(log,
				http.StatusOK, `{"has-user-setup": false, "setup-token": "abc123"}`,
				http.StatusOK, tt.body))
			defer srv.Close()

			o := newOrchestrator(t, srv, 1, (&sleepRecorder{}).sleep)
			res := o.Bootstrap(testRC(), Identity{})

			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.Equal(t, FailureSetupRejected, res.Failure)
			if tt.body != "" {
				assert.Contains(t, res.Detail, tt.body)
			}
			assert.Equal(t, 1, log.setupCalls())
		})
	}
}

func TestBootstrapAcceptsStringIdentifier(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(stockHandlers(log,
		http.StatusOK, `{"has-user-setup": false, "setup-token": "abc123"}`,
		http.StatusOK, `{"id": "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"}`))
	defer srv.Close()

	o := newOrchestrator(t, srv, 1, (&sleepRecorder{}).sleep)
	res := o.Bootstrap(testRC(), Identity{})

	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, json.RawMessage(`"f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`), res.ID)
}

func TestExtractSetupToken(t *testing.T) {
	token, err := ExtractSetupToken(&Properties{SetupToken: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractSetupToken(&Properties{})
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureTokenMissing, f.Kind)

	_, err = ExtractSetupToken(nil)
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureTokenMissing, f.Kind)
}

func TestCheckConfigurationState(t *testing.T) {
	log := &callLog{}
	srv := httptest.NewServer(stockHandlers(log,
		http.StatusOK, `{"has-user-setup": false, "setup-token": "tok"}`,
		http.StatusOK, `{"id": 1}`))
	defer srv.Close()

	o := newOrchestrator(t, srv, 1, (&sleepRecorder{}).sleep)
	state, props, err := o.CheckConfigurationState(testRC())

	require.NoError(t, err)
	assert.Equal(t, StateNeedsSetup, state)
	require.NotNil(t, props)
	assert.Equal(t, "tok", props.SetupToken)
}

func TestCustomTargetPaths(t *testing.T) {
	log := &callLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/props", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"has-user-setup": false, "setup-token": "t"}`)
	})
	mux.HandleFunc("/init", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.mu.Lock()
		log.setup++
		log.setupBodies = append(log.setupBodies, body)
		log.mu.Unlock()
		fmt.Fprint(w, `{"id": 42}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	o, err := New(Config{
		Target: Target{
			BaseURL:        srv.URL,
			HealthPath:     "/healthz",
			PropertiesPath: "/props",
			SetupPath:      "/init",
		},
		MaxAttempts: 1,
		HTTPClient:  srv.Client(),
		Sleep:       (&sleepRecorder{}).sleep,
	})
	require.NoError(t, err)

	res := o.Bootstrap(testRC(), Identity{})
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, json.RawMessage("42"), res.ID)
	assert.Equal(t, 1, log.setupCalls())
}
