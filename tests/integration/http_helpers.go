package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hanifnr/edocs/internal/auth"
	"github.com/hanifnr/edocs/internal/database"
	"github.com/hanifnr/edocs/internal/handlers"
	"github.com/hanifnr/edocs/internal/routes"
	"github.com/hanifnr/edocs/internal/services"
	pkghttp "github.com/hanifnr/edocs/pkg/http"
)

const (
	testJWTSecret       = "integration-test-secret-32-chars!"
	testLockoutAttempts = 3
)

// TestServer wraps httptest.Server with the full application wiring over a
// real database.
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	TokenManager *auth.TokenManager
}

// NewTestServer initializes a complete HTTP server against the given database
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo, roleRepo, auditRepo := InitializeRepositories(db)

	tokenManager := auth.NewTokenManager(testJWTSecret, 1*time.Hour)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{})

	auditService := services.NewAuditService(auditRepo, logger)
	authService := services.NewAuthService(
		userRepo,
		roleRepo,
		tokenManager,
		auditService,
		services.LockoutPolicy{Threshold: testLockoutAttempts},
		timingDelay,
		logger,
	)

	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	auditHandler := handlers.NewAuditHandler(auditService, ipConfig)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, authHandler, auditHandler, tokenManager)
	})

	return &TestServer{
		Server:       httptest.NewServer(router),
		DB:           db,
		TokenManager: tokenManager,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// PostJSON sends a JSON POST request, with an optional bearer token
func (ts *TestServer) PostJSON(path string, payload interface{}, token string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.Server.Client().Do(req)
}

// Get sends a GET request, with an optional bearer token
func (ts *TestServer) Get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, ts.Server.URL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.Server.Client().Do(req)
}

// DecodeJSON reads and decodes a JSON response body
func DecodeJSON(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
