package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bootstrapbugz/backend/libs/clients"
	"bootstrapbugz/backend/services/console-gateway/internal/audit"
	"bootstrapbugz/backend/services/console-gateway/internal/http/handlers"
	"bootstrapbugz/backend/services/console-gateway/internal/http/middleware"
)

type backendCall struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          string
}

type cannedResponse struct {
	status int
	body   string
	header map[string]string
}

// fakeBackend plays the bootstrapbugz API.
type fakeBackend struct {
	mu        sync.Mutex
	calls     []backendCall
	answers   map[string]cannedResponse
	onRequest func()
	server    *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{answers: map[string]cannedResponse{}}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, backendCall{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(data),
		})
		answer, ok := b.answers[r.Method+" "+r.URL.Path]
		hook := b.onRequest
		b.mu.Unlock()
		if hook != nil {
			hook()
		}
		if !ok {
			answer = cannedResponse{status: http.StatusNoContent}
		}
		for k, v := range answer.header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(answer.status)
		_, _ = io.WriteString(w, answer.body)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) answer(route string, resp cannedResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers[route] = resp
}

func (b *fakeBackend) hook(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRequest = fn
}

func (b *fakeBackend) received() []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]backendCall(nil), b.calls...)
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
	ctxErrs []error
}

func (m *memoryRecorder) Record(ctx context.Context, entry audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	return nil
}

func (m *memoryRecorder) contextErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.ctxErrs...)
}

func (m *memoryRecorder) all() []audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Entry(nil), m.entries...)
}

type gateway struct {
	handler  http.Handler
	backend  *fakeBackend
	recorder *memoryRecorder
}

func newGateway(t *testing.T, throttle func(http.Handler) http.Handler) *gateway {
	t.Helper()
	backend := newFakeBackend(t)
	recorder := &memoryRecorder{}
	logger := zap.NewNop()

	admin := clients.NewAdminService(backend.server.URL+"/v1.0/admin", backend.server.Client(), logger)
	auth := clients.NewAuthService(backend.server.URL+"/v1.0/auth", backend.server.Client(), logger)

	router := NewRouter(RouterDeps{
		AdminHandlers: handlers.NewAdminHandlers(admin, recorder, logger),
		AuthHandlers:  handlers.NewAuthHandlers(auth, logger),
		HealthHandler: handlers.NewHealthHandler(),
		Throttle:      throttle,
	})
	return &gateway{
		handler:  middleware.Chain(router, middleware.RequestID()),
		backend:  backend,
		recorder: recorder,
	}
}

func (g *gateway) do(method, target, body, bearer string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func adminBearer(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAdminMutationsReachBackend(t *testing.T) {
	bearer := adminBearer(t)

	tests := []struct {
		method   string
		route    string
		upstream string
		body     string
		action   string
	}{
		{http.MethodPut, "/api/admin/users/activate", "/v1.0/admin/users/activate", `{"usernames":["notActivated"]}`, "activate"},
		{http.MethodPut, "/api/admin/users/deactivate", "/v1.0/admin/users/deactivate", `{"usernames":["forUpdate1"]}`, "deactivate"},
		{http.MethodPut, "/api/admin/users/lock", "/v1.0/admin/users/lock", `{"usernames":["user"]}`, "lock"},
		{http.MethodPut, "/api/admin/users/unlock", "/v1.0/admin/users/unlock", `{"usernames":["locked"]}`, "unlock"},
		{http.MethodDelete, "/api/admin/users/delete", "/v1.0/admin/users/delete", `{"usernames":["forUpdate2"]}`, "delete"},
		{http.MethodPost, "/api/admin/users/role", "/v1.0/admin/users/role", `{"usernames":["user"],"roleNames":["USER","ADMIN"]}`, "change-role"},
	}

	for _, tc := range tests {
		t.Run(tc.action, func(t *testing.T) {
			gw := newGateway(t, nil)

			rec := gw.do(tc.method, tc.route, tc.body, bearer)
			require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

			calls := gw.backend.received()
			require.Len(t, calls, 1)
			assert.Equal(t, tc.method, calls[0].Method)
			assert.Equal(t, tc.upstream, calls[0].Path)
			assert.Equal(t, bearer, calls[0].Authorization)
			assert.JSONEq(t, tc.body, calls[0].Body)

			entries := gw.recorder.all()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.action, entries[0].Action)
			assert.Equal(t, "admin", entries[0].Actor)
			assert.Equal(t, http.StatusNoContent, entries[0].Status)
			assert.NotEmpty(t, entries[0].RequestID)
		})
	}
}

func TestAdminUsersList(t *testing.T) {
	gw := newGateway(t, nil)
	gw.backend.answer("GET /v1.0/admin/users", cannedResponse{
		status: http.StatusOK,
		body:   `[{"id":1,"username":"admin","activated":true,"nonLocked":true,"roles":[{"name":"ADMIN"}]}]`,
	})

	rec := gw.do(http.MethodGet, "/api/admin/users", "", adminBearer(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`[{"id":1,"firstName":"","lastName":"","username":"admin","email":"","activated":true,"nonLocked":true,"roles":[{"name":"ADMIN"}]}]`,
		rec.Body.String())
}

func TestAdminRoutesRequireBearer(t *testing.T) {
	gw := newGateway(t, nil)

	rec := gw.do(http.MethodPut, "/api/admin/users/lock", `{"usernames":["user"]}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, gw.backend.received())
}

func TestAdminRejectsInvalidBody(t *testing.T) {
	gw := newGateway(t, nil)
	bearer := adminBearer(t)

	rec := gw.do(http.MethodPut, "/api/admin/users/lock", `{"usernames":[]}`, bearer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "usernames")

	rec = gw.do(http.MethodPut, "/api/admin/users/lock", `{not json`, bearer)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, gw.backend.received())
	assert.Empty(t, gw.recorder.all())
}

func TestUpstreamErrorIsRelayed(t *testing.T) {
	gw := newGateway(t, nil)
	gw.backend.answer("PUT /v1.0/admin/users/unlock", cannedResponse{
		status: http.StatusForbidden,
		body:   `{"message":"Access denied"}`,
	})

	rec := gw.do(http.MethodPut, "/api/admin/users/unlock", `{"usernames":["locked"]}`, adminBearer(t))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Access denied"}`, rec.Body.String())

	entries := gw.recorder.all()
	require.Len(t, entries, 1)
	assert.Equal(t, http.StatusForbidden, entries[0].Status)
}

func TestAuditSurvivesClientDisconnect(t *testing.T) {
	gw := newGateway(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The backend applies the change, then the browser goes away before the answer arrives.
	gw.backend.hook(cancel)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/users/lock", strings.NewReader(`{"usernames":["user"]}`)).WithContext(ctx)
	req.Header.Set("Authorization", adminBearer(t))
	gw.handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, gw.backend.received(), 1)
	entries := gw.recorder.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "lock", entries[0].Action)
	assert.Equal(t, "admin", entries[0].Actor)

	ctxErrs := gw.recorder.contextErrors()
	require.Len(t, ctxErrs, 1)
	assert.NoError(t, ctxErrs[0])
}

func TestUpstreamErrorKeepsContentType(t *testing.T) {
	gw := newGateway(t, nil)
	gw.backend.answer("PUT /v1.0/admin/users/lock", cannedResponse{
		status: http.StatusBadGateway,
		body:   "<html><body>bad gateway</body></html>",
		header: map[string]string{"Content-Type": "text/html; charset=utf-8"},
	})
	gw.backend.answer("PUT /v1.0/admin/users/unlock", cannedResponse{
		status: http.StatusConflict,
		body:   `{"message":"already unlocked"}`,
		header: map[string]string{"Content-Type": "application/problem+json"},
	})

	bearer := adminBearer(t)
	rec := gw.do(http.MethodPut, "/api/admin/users/lock", `{"usernames":["user"]}`, bearer)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<html><body>bad gateway</body></html>", rec.Body.String())

	rec = gw.do(http.MethodPut, "/api/admin/users/unlock", `{"usernames":["locked"]}`, bearer)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestUnreachableBackendIsBadGateway(t *testing.T) {
	gw := newGateway(t, nil)
	gw.backend.server.Close()

	rec := gw.do(http.MethodPost, "/api/auth/forgot-password", `{"email":"user@localhost.com"}`, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "auth service unavailable")
}

func TestLoginRelaysSessionHeaders(t *testing.T) {
	gw := newGateway(t, nil)
	gw.backend.answer("POST /v1.0/auth/login", cannedResponse{
		status: http.StatusOK,
		header: map[string]string{
			"Authorization": "Bearer access",
			"Refresh-Token": "Bearer refresh",
			"Set-Cookie":    "internal=1",
		},
	})

	rec := gw.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"qwerty123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer access", rec.Header().Get("Authorization"))
	assert.Equal(t, "Bearer refresh", rec.Header().Get("Refresh-Token"))
	assert.Empty(t, rec.Header().Get("Set-Cookie"))

	calls := gw.backend.received()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v1.0/auth/login", calls[0].Path)
	assert.JSONEq(t, `{"username":"admin","password":"qwerty123"}`, calls[0].Body)
}

func TestLogoutForwardsBearer(t *testing.T) {
	gw := newGateway(t, nil)
	bearer := adminBearer(t)

	rec := gw.do(http.MethodGet, "/api/auth/logout", "", bearer)
	require.Equal(t, http.StatusNoContent, rec.Code)

	calls := gw.backend.received()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "/v1.0/auth/logout", calls[0].Path)
	assert.Equal(t, bearer, calls[0].Authorization)
}

func TestSignUpReturnsCreatedUser(t *testing.T) {
	gw := newGateway(t, nil)
	gw.backend.answer("POST /v1.0/auth/sign-up", cannedResponse{
		status: http.StatusCreated,
		body:   `{"id":7,"firstName":"Test","lastName":"Test","username":"test","email":"test@localhost.com","activated":false}`,
	})

	body := `{"firstName":"Test","lastName":"Test","username":"test","email":"test@localhost.com","password":"qwerty123","confirmPassword":"qwerty123"}`
	rec := gw.do(http.MethodPost, "/api/auth/sign-up", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":7`)
}

func TestConfirmRegistration(t *testing.T) {
	gw := newGateway(t, nil)

	rec := gw.do(http.MethodGet, "/api/auth/confirm-registration", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = gw.do(http.MethodGet, "/api/auth/confirm-registration?token=abc123", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	calls := gw.backend.received()
	require.Len(t, calls, 1)
	assert.Equal(t, "/v1.0/auth/confirm-registration", calls[0].Path)
	assert.Equal(t, "token=abc123", calls[0].Query)
}

func TestPasswordRoutes(t *testing.T) {
	gw := newGateway(t, nil)

	rec := gw.do(http.MethodPut, "/api/auth/reset-password", `{"token":"t","password":"qwerty123","confirmPassword":"qwerty123"}`, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = gw.do(http.MethodPost, "/api/auth/resend-confirmation-email", `{"usernameOrEmail":"notActivated"}`, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	calls := gw.backend.received()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, "/v1.0/auth/reset-password", calls[0].Path)
	assert.Equal(t, http.MethodPost, calls[1].Method)
	assert.Equal(t, "/v1.0/auth/resend-confirmation-email", calls[1].Path)
}

func TestMethodNotAllowed(t *testing.T) {
	gw := newGateway(t, nil)

	rec := gw.do(http.MethodGet, "/api/auth/reset-password", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPut, rec.Header().Get("Allow"))
}

func TestLoginThrottle(t *testing.T) {
	gw := newGateway(t, middleware.RateLimit(1, time.Hour))

	body := `{"username":"admin","password":"qwerty123"}`
	assert.Equal(t, http.StatusNoContent, gw.do(http.MethodPost, "/api/auth/login", body, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, gw.do(http.MethodPost, "/api/auth/login", body, "").Code)
	assert.Len(t, gw.backend.received(), 1)
}

func TestHealth(t *testing.T) {
	gw := newGateway(t, nil)
	rec := gw.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
