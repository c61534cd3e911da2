package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "anime-api: "+version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestClientCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, p, ok := r.BasicAuth(); !ok || u != "admin" || p != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/animes/7":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "name": "Mushishi"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/animes/find":
			_ = json.NewEncoder(w).Encode([]any{})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/animes/admin/7":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code":    "ANIME_NOT_FOUND",
				"message": "Anime ID not found",
				"status":  http.StatusBadRequest,
			})
		}
	}))
	defer srv.Close()

	auth := []string{"--url", srv.URL, "--username", "admin", "--password", "secret"}

	t.Run("Get", func(t *testing.T) {
		out, err := execute(t, append([]string{"client", "get", "7"}, auth...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, `"name": "Mushishi"`) {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Find Empty", func(t *testing.T) {
		out, err := execute(t, append([]string{"client", "find", "Nothing"}, auth...)...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(out) != "[]" {
			t.Errorf("expected [], got %q", out)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if _, err := execute(t, append([]string{"client", "delete", "7"}, auth...)...); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := execute(t, append([]string{"client", "get", "8"}, auth...)...)
		if err == nil || !strings.Contains(err.Error(), "Anime ID not found") {
			t.Fatalf("expected not found error, got %v", err)
		}
	})

	t.Run("Invalid ID", func(t *testing.T) {
		if _, err := execute(t, append([]string{"client", "get", "abc"}, auth...)...); err == nil {
			t.Fatal("expected an error for a non-numeric id")
		}
	})
}
