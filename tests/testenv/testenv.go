// Package testenv provides a full in-process test environment: a mock boost
// engine, a temporary SQLite database, and the complete HTTP surface wired
// the same way the server binary wires it.
package testenv

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/mkarel/boostgate/internal/accesskey"
	"github.com/mkarel/boostgate/internal/admin"
	"github.com/mkarel/boostgate/internal/boost"
	"github.com/mkarel/boostgate/internal/boostctl"
	"github.com/mkarel/boostgate/internal/httpapi"
	appmw "github.com/mkarel/boostgate/internal/middleware"
	"github.com/mkarel/boostgate/internal/storage"
	"github.com/mkarel/boostgate/internal/testutil/mockboost"
	"github.com/mkarel/boostgate/internal/web"
)

// AdminPassword is the admin password used by the test environment.
const AdminPassword = "testpassword123"

// PollInterval is the stats poll cadence inside the test environment. Kept
// short so journey tests see counters move quickly.
const PollInterval = 50 * time.Millisecond

var sessionSecret = []byte("0123456789abcdef0123456789abcdef")

// TestEnv is a running server plus the fakes behind it.
type TestEnv struct {
	// Server is the full application surface.
	Server *httptest.Server
	// Mock is the boost engine the server talks to.
	Mock *mockboost.Server
	// Store is the backing database, open for direct assertions.
	Store *storage.SQLiteStorage
	// Client carries cookies across requests (admin session, CSRF).
	Client *http.Client

	controller *boostctl.Controller
}

// Setup builds and starts the environment. Everything is torn down via
// t.Cleanup in reverse order.
func Setup(t *testing.T) *TestEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logLevel := new(slog.LevelVar)

	mock := mockboost.New()
	t.Cleanup(mock.Close)

	store, err := storage.New(filepath.Join(t.TempDir(), "boostgate.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	engine := boost.NewClient(mock.URL)
	controller := boostctl.New(engine, store, logger, boostctl.WithPollInterval(PollInterval))
	validator := accesskey.NewValidator(store, logger)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash admin password: %v", err)
	}

	pages, err := web.NewHandler(logger)
	if err != nil {
		t.Fatalf("failed to load pages: %v", err)
	}

	adminHandler := admin.NewHandler(store, passwordHash, logLevel, logger)
	apiHandler := httpapi.NewHandler(validator, controller, logger)
	limiter := httpapi.NewRateLimiter(rate.Limit(100), 200)
	t.Cleanup(limiter.Stop)

	r := chi.NewRouter()
	r.Use(appmw.RequestID)
	r.Use(appmw.MaxBodySize(1 << 20))
	r.Get("/health", adminHandler.HandleHealth)
	r.Get("/ready", adminHandler.HandleReady)
	r.Mount("/api", apiHandler.NewRouter(limiter))
	r.Mount("/admin", adminHandler.NewRouter(sessionSecret, false,
		pages.HandleAdminLogin, pages.HandleAdminDashboard, limiter.Middleware))
	r.Mount("/", pages.Routes())

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	env := &TestEnv{
		Server:     server,
		Mock:       mock,
		Store:      store,
		Client:     &http.Client{Jar: jar, Timeout: 5 * time.Second},
		controller: controller,
	}
	t.Cleanup(func() {
		env.shutdown(t)
	})

	return env
}

// URL joins a path onto the server base URL.
func (e *TestEnv) URL(path string) string {
	return e.Server.URL + path
}

func (e *TestEnv) shutdown(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.controller.Shutdown(ctx); err != nil {
		t.Logf("controller shutdown: %v", err)
	}
}

// testWriter routes env logs through t.Logf so failures carry server output.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}
