package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/signupboard/internal/app"
	"github.com/pscheid92/signupboard/internal/domain"
	"github.com/pscheid92/signupboard/internal/platform/config"
	"github.com/pscheid92/signupboard/internal/view"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockDispatcher struct {
	mu sync.Mutex

	loadFn   func(ctx context.Context) app.Result
	signupFn func(ctx context.Context, n app.Notifier, email, activity string) app.Result
	removeFn func(ctx context.Context, n app.Notifier, activity, email string, confirmed bool) app.Result

	loadCalls   int
	signupCalls int
	removeCalls int
}

func (m *mockDispatcher) Load(ctx context.Context) app.Result {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return app.Result{Board: testBoard(), Refreshed: true}
}

func (m *mockDispatcher) Signup(ctx context.Context, n app.Notifier, email, activity string) app.Result {
	m.mu.Lock()
	m.signupCalls++
	m.mu.Unlock()
	if m.signupFn != nil {
		return m.signupFn(ctx, n, email, activity)
	}
	return app.Result{}
}

func (m *mockDispatcher) Remove(ctx context.Context, n app.Notifier, activity, email string, confirmed bool) app.Result {
	m.mu.Lock()
	m.removeCalls++
	m.mu.Unlock()
	if m.removeFn != nil {
		return m.removeFn(ctx, n, activity, email, confirmed)
	}
	return app.Result{}
}

type mockNotices struct {
	mu      sync.Mutex
	notices map[uuid.UUID]domain.Notice
}

func newMockNotices() *mockNotices {
	return &mockNotices{notices: make(map[uuid.UUID]domain.Notice)}
}

func (m *mockNotices) Show(visitorID uuid.UUID, n domain.Notice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[visitorID] = n
}

func (m *mockNotices) Visible(visitorID uuid.UUID) domain.Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notices[visitorID]
}

// --- Fixtures ---

const testCSRFToken = "test-csrf-token"

func testBoard() domain.Board {
	return domain.Board{Activities: []domain.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu"},
		},
		{
			Name:            "Art/Design Club",
			Description:     "Sketching and graphic design",
			Schedule:        "Mondays, 4:00 PM - 5:30 PM",
			MaxParticipants: 10,
		},
	}}
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:            "test",
		Port:              "0",
		ActivitiesAPIURL:  "http://activities.test",
		SessionSecret:     "test-session-secret-at-least-32-bytes",
		UpstreamTimeout:   time.Second,
		NoticeDuration:    3500 * time.Millisecond,
		SessionMaxAge:     time.Hour,
		MutationRateLimit: 100,
		MutationRateBurst: 100,
	}
}

func newTestServer(t *testing.T, d dispatcher, notices noticeBoard, opts ...Option) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(), d, notices, opts...)
}

// --- Request helpers ---

func doGet(srv *Server, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := newGetRequest(target)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(srv, req)
}

func doPost(srv *Server, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := newPostRequest(target, form)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(srv, req)
}

// visitorCookie returns the last session cookie the response set.
func visitorCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			found = c
		}
	}
	require.NotNil(t, found, "response did not set %s cookie", sessionName)
	return found
}

// followRedirect asserts a post-redirect to the board and loads it with
// the visitor's latest session cookie.
func followRedirect(t *testing.T, srv *Server, rec *httptest.ResponseRecorder, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "no visitor session to follow with")
	return doGet(srv, "/", cookie)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, d dispatcher, notices noticeBoard, opts ...Option) *Server {
	t.Helper()

	renderer, err := view.New(cfg.NoticeDuration)
	require.NoError(t, err)

	srv, err := NewServer(cfg, d, notices, renderer, opts...)
	require.NoError(t, err)
	return srv
}

func newGetRequest(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

// newPostRequest builds a form post with a matching CSRF cookie and token.
func newPostRequest(target string, form url.Values) *http.Request {
	form.Set("csrf_token", testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}
