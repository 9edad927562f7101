package sdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/plaidnox/veta/sdk/go/session"
	"github.com/plaidnox/veta/sdk/go/testutil"
)

const (
	testEmail    = "ana@acme.test"
	testPassword = "correct-horse"
)

type testEnv struct {
	backend *testutil.Backend
	client  *Client
	nav     *MemoryNavigator
	storage *session.Memory
	metrics *metricRecorder
}

// newTestEnv starts a backend with one account and a client signed in to it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := testutil.NewBackend()
	t.Cleanup(backend.Close)
	backend.AddAccount(testutil.Account{Email: testEmail, Password: testPassword, UserName: "ana"})

	env := &testEnv{
		backend: backend,
		nav:     NewMemoryNavigator("/jobtrack?org=org-1"),
		storage: session.NewMemory(),
		metrics: &metricRecorder{},
	}
	access, refresh := backend.IssueTokens(testEmail)
	client, err := NewClient(Config{
		BaseURL:      backend.URL(),
		Storage:      env.storage,
		Navigator:    env.nav,
		AccessToken:  access,
		RefreshToken: refresh,
		Email:        testEmail,
		Telemetry:    TelemetryHooks{OnMetric: env.metrics.record},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	env.client = client
	return env
}

func (e *testEnv) selectWorkspace(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if err := e.client.Store().SetDomain(ctx, "acme.test"); err != nil {
		t.Fatalf("set domain: %v", err)
	}
	if err := e.client.Store().SetOrg(ctx, "org-1"); err != nil {
		t.Fatalf("set org: %v", err)
	}
}

// assertTornDown checks that tokens and selection are gone.
func (e *testEnv) assertTornDown(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, key := range []session.Key{session.KeyAccessToken, session.KeyRefreshToken, session.KeySelectedDomain, session.KeySelectedOrg} {
		v, err := e.storage.Get(ctx, key)
		if err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
		if v != "" {
			t.Fatalf("expected %s to be cleared, got %q", key, v)
		}
	}
}

func (e *testEnv) assertSignedIn(t *testing.T) {
	t.Helper()
	creds, err := e.client.Store().Credentials(context.Background())
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if !creds.HasTokens() {
		t.Fatalf("expected tokens to survive, got %+v", creds)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func requireAPIError(t *testing.T, err error, status int) APIError {
	t.Helper()
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != status {
		t.Fatalf("expected status %d, got %d (%s)", status, apiErr.Status, apiErr.Message)
	}
	return apiErr
}

type metricRecorder struct {
	mu      sync.Mutex
	metrics []Metric
}

func (m *metricRecorder) record(_ context.Context, metric Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = append(m.metrics, metric)
}

func (m *metricRecorder) count(name string, labels map[string]string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
outer:
	for _, metric := range m.metrics {
		if metric.Name != name {
			continue
		}
		for k, v := range labels {
			if metric.Labels[k] != v {
				continue outer
			}
		}
		n++
	}
	return n
}

// headerRecorder answers 204 and keeps the headers of every request.
type headerRecorder struct {
	mu      sync.Mutex
	headers []http.Header
}

func (h *headerRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.headers = append(h.headers, r.Header.Clone())
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (h *headerRecorder) last() http.Header {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.headers) == 0 {
		return http.Header{}
	}
	return h.headers[len(h.headers)-1]
}
