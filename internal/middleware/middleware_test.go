package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/anime-api/internal/config"
	"github.com/deppfellow/anime-api/internal/errs"
	"github.com/deppfellow/anime-api/internal/model"
	"github.com/deppfellow/anime-api/internal/server"
	"github.com/deppfellow/anime-api/internal/service"
)

type fakeAuthenticator map[string]model.User

func (f fakeAuthenticator) Authenticate(_ context.Context, username, password string) (*model.User, error) {
	user, ok := f[username]
	if !ok || user.Password != password {
		return nil, service.ErrInvalidCredentials
	}
	return &user, nil
}

var testUsers = fakeAuthenticator{
	"user":  {ID: 1, Username: "user", Password: "pw", Authorities: "ROLE_USER"},
	"admin": {ID: 2, Username: "admin", Password: "pw", Authorities: "ROLE_USER,ROLE_ADMIN"},
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *server.Server {
	t.Helper()

	cfg := &config.Config{
		Primary:  config.Primary{Env: "test"},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("failed to finalize config: %v", err)
	}

	log := zerolog.Nop()
	return &server.Server{Config: cfg, Logger: &log}
}

func newTestEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	return e
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, GetUserRole(c))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRequestID(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	if generated == "" || rec.Body.String() != generated {
		t.Errorf("expected generated id in header and context, got %q / %q", generated, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected incoming id to be reused, got %q", got)
	}
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t, nil)
	auth := NewAuthMiddleware(s, testUsers)

	e := newTestEcho(s)
	api := e.Group("/api", auth.RequireAuth())
	api.GET("/user", ok)
	api.GET("/admin", ok, auth.RequireRole(model.RoleAdmin))

	tests := []struct {
		name     string
		path     string
		username string
		password string
		status   int
	}{
		{name: "No Credentials", path: "/api/user", status: http.StatusUnauthorized},
		{name: "Wrong Password", path: "/api/user", username: "user", password: "bad", status: http.StatusUnauthorized},
		{name: "Unknown User", path: "/api/user", username: "ghost", password: "pw", status: http.StatusUnauthorized},
		{name: "User", path: "/api/user", username: "user", password: "pw", status: http.StatusOK},
		{name: "User On Admin Route", path: "/api/admin", username: "user", password: "pw", status: http.StatusForbidden},
		{name: "Admin On Admin Route", path: "/api/admin", username: "admin", password: "pw", status: http.StatusOK},
		{name: "Admin On User Route", path: "/api/user", username: "admin", password: "pw", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.username != "" {
				req.SetBasicAuth(tt.username, tt.password)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}

			switch tt.status {
			case http.StatusUnauthorized:
				if got := rec.Header().Get(echo.HeaderWWWAuthenticate); got != `basic realm="anime-api"` {
					t.Errorf("unexpected WWW-Authenticate %q", got)
				}
				if body := decodeError(t, rec); body.Code != "UNAUTHORIZED" {
					t.Errorf("expected UNAUTHORIZED, got %s", body.Code)
				}
			case http.StatusForbidden:
				if body := decodeError(t, rec); body.Code != "FORBIDDEN" {
					t.Errorf("expected FORBIDDEN, got %s", body.Code)
				}
			}
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	s := newTestServer(t, nil)
	e := newTestEcho(s)
	e.GET("/admin", ok, NewAuthMiddleware(s, testUsers).RequireRole(model.RoleAdmin))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	e := newTestEcho(newTestServer(t, nil))
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("database exploded")
	})
	e.GET("/bad", func(c echo.Context) error {
		code := "ANIME_NOT_FOUND"
		return errs.NewBadRequestError("Anime ID not found", true, &code, nil, nil)
	})

	t.Run("Unknown Route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Message != "Route not found" {
			t.Errorf("unexpected message %q", body.Message)
		}
	})

	t.Run("Internal Error Hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Message != http.StatusText(http.StatusInternalServerError) {
			t.Errorf("internal error leaked: %q", body.Message)
		}
	})

	t.Run("HTTP Error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))
		body := decodeError(t, rec)
		if rec.Code != http.StatusBadRequest || body.Code != "ANIME_NOT_FOUND" || !body.Override {
			t.Errorf("unexpected response %d %+v", rec.Code, body)
		}
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		s := newTestServer(t, nil)
		e := newTestEcho(s)
		e.GET("/", ok, NewRateLimitMiddleware(s).Limit())

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
			}
		}
	})

	t.Run("Enforced", func(t *testing.T) {
		s := newTestServer(t, func(cfg *config.Config) {
			cfg.Server.RateLimit = 0.001
			cfg.Server.RateLimitBurst = 1
		})
		e := newTestEcho(s)
		e.GET("/", ok, NewRateLimitMiddleware(s).Limit())

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("first request: expected 200, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second request: expected 429, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Code != "TOO_MANY_REQUESTS" {
			t.Errorf("unexpected code %s", body.Code)
		}
	})
}

func TestTracingWithoutNewRelic(t *testing.T) {
	s := newTestServer(t, nil)
	tm := NewTracingMiddleware(s, nil)

	e := newTestEcho(s)
	e.Use(tm.NewRelicMiddleware(), tm.EnhanceTracing())
	e.GET("/", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
