package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/anime-api/internal/errs"
	"github.com/deppfellow/anime-api/internal/model"
)

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := New("", nil, "", "")
		if c.baseURL != DefaultBaseURL {
			t.Errorf("expected %s, got %s", DefaultBaseURL, c.baseURL)
		}
		if c.httpClient != http.DefaultClient {
			t.Error("expected http.DefaultClient to be used")
		}
	})

	t.Run("Trailing Slash", func(t *testing.T) {
		if c := New("http://example.com/", nil, "", ""); c.baseURL != "http://example.com" {
			t.Errorf("unexpected baseURL %s", c.baseURL)
		}
	})
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != "user" || password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL, srv.Client(), "user", "secret")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestList(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/animes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("sort"); got != "name,desc" {
			t.Errorf("unexpected sort %q", got)
		}
		if got := r.URL.Query().Get("size"); got != "5" {
			t.Errorf("unexpected size %q", got)
		}
		req := model.NewPageRequest(1, 5, model.Sort{})
		writeJSON(w, http.StatusOK, model.NewPage([]model.Anime{{ID: 6, Name: "Akira"}}, req, 6))
	})

	page, err := c.List(context.Background(), 1, 5, "name,desc")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Number != 1 || page.TotalElements != 6 || len(page.Content) != 1 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestGet(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/animes/1":
			writeJSON(w, http.StatusOK, model.Anime{ID: 1, Name: "Monster"})
		default:
			writeJSON(w, http.StatusBadRequest, errs.HTTPError{Code: "ANIME_NOT_FOUND", Message: "Anime ID not found", Status: 400})
		}
	})

	anime, err := c.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if anime.Name != "Monster" {
		t.Errorf("unexpected anime %+v", anime)
	}

	_, err = c.Get(context.Background(), 2)
	httpErr, ok := errs.As(err)
	if !ok {
		t.Fatalf("expected *errs.HTTPError, got %T", err)
	}
	if httpErr.Status != http.StatusBadRequest || httpErr.Code != "ANIME_NOT_FOUND" {
		t.Errorf("unexpected error %+v", httpErr)
	}
}

func TestFindByName(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/animes/find" || r.URL.Query().Get("name") != "Steins;Gate" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		writeJSON(w, http.StatusOK, []model.Anime{})
	})

	animes, err := c.FindByName(context.Background(), "Steins;Gate")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(animes) != 0 {
		t.Errorf("expected no animes, got %+v", animes)
	}
}

func TestWrites(t *testing.T) {
	var lastMethod, lastPath string
	var lastBody map[string]any

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		lastMethod, lastPath, lastBody = r.Method, r.URL.Path, nil

		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
			}
			_ = json.Unmarshal(raw, &lastBody)
		}

		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, model.Anime{ID: 9, Name: lastBody["name"].(string)})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	created, err := c.Create(ctx, "Paprika")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 9 || created.Name != "Paprika" {
		t.Errorf("unexpected anime %+v", created)
	}

	if err := c.Replace(ctx, 9, "Perfect Blue"); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if lastMethod != http.MethodPut || lastBody["id"] != float64(9) || lastBody["name"] != "Perfect Blue" {
		t.Errorf("unexpected replace request %s %v", lastMethod, lastBody)
	}

	if err := c.Delete(ctx, 9); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if lastMethod != http.MethodDelete || lastPath != "/api/v1/animes/admin/9" {
		t.Errorf("unexpected delete request %s %s", lastMethod, lastPath)
	}
}

func TestUnauthorized(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	c.password = "wrong"

	_, err := c.ListAll(context.Background())
	httpErr, ok := errs.As(err)
	if !ok || httpErr.Status != http.StatusUnauthorized || httpErr.Code != "UNAUTHORIZED" {
		t.Errorf("expected 401 error, got %v", err)
	}
}
