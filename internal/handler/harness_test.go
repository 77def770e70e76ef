package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/gateway"
	"welfarewatch-web/internal/handler"
	"welfarewatch-web/internal/navigation"
	"welfarewatch-web/internal/session"
	"welfarewatch-web/internal/testutil"

	"github.com/stretchr/testify/require"
)

const (
	testCSRF = "test-csrf-token"
	testSite = "WelfareWatch"
)

// fakeBackend answers "METHOD /api/path" with registered handlers and 404
// for anything else.
type fakeBackend struct {
	server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		routes: make(map[string]http.HandlerFunc),
		hits:   make(map[string]int),
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.serveHTTP))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" /api"+path] = h
}

func (b *fakeBackend) reply(method, path string, status int, body string) {
	b.handle(method, path, jsonReply(status, body))
}

func (b *fakeBackend) hitCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" /api"+path]
}

func (b *fakeBackend) serveHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	h, ok := b.routes[key]
	b.hits[key]++
	b.mu.Unlock()

	if !ok {
		jsonReply(http.StatusNotFound, `{"detail":"Not found."}`)(w, r)
		return
	}
	h(w, r)
}

func jsonReply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func authResult(token string, user *domain.Profile) string {
	data, _ := json.Marshal(domain.AuthResult{Token: token, User: user})
	return string(data)
}

type harness struct {
	backend    *fakeBackend
	store      *session.Store
	storage    *session.MemoryTokenStorage
	notifier   *testutil.MockNotifier
	redirector *testutil.MockRedirector
	router     http.Handler
}

func newHarness(t *testing.T, checks map[string]handler.CheckFunc) *harness {
	t.Helper()
	h := &harness{
		backend:    newFakeBackend(t),
		storage:    session.NewMemoryTokenStorage(),
		notifier:   &testutil.MockNotifier{},
		redirector: &testutil.MockRedirector{},
	}

	client, err := gateway.New(gateway.Options{
		BaseURL:    h.backend.server.URL + "/api",
		Timeout:    2 * time.Second,
		Slot:       h.storage,
		Notifier:   h.notifier,
		Redirector: h.redirector,
		LoginPath:  navigation.LoginPath,
	})
	require.NoError(t, err)

	h.store = session.NewStore(client, h.storage)
	client.OnUnauthenticated(h.store.ClearAuth)

	views, err := handler.NewViews(client, h.store, testSite)
	require.NoError(t, err)

	h.router = handler.NewRouter(handler.RouterConfig{
		Views:        views,
		Store:        h.store,
		Site:         testSite,
		CSRFToken:    testCSRF,
		AllowedHosts: []string{"example.com"},
		ReadyChecks:  checks,
	})
	return h
}

// loginAs installs a session directly, skipping the login form
func (h *harness) loginAs(user *domain.Profile) string {
	token := testutil.NewTestToken(user.ID, time.Now().Add(time.Hour))
	h.store.SetAuth(context.Background(), token, user)
	return token
}

func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.serve(httptest.NewRequest(http.MethodGet, target, nil))
}

func failingCheck(ctx context.Context) error {
	return errors.New("connection refused")
}

func passingCheck(ctx context.Context) error {
	return nil
}
