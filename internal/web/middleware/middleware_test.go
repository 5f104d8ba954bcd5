package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tablesorter/internal/config"
)

func TestProxyList_ClientIP(t *testing.T) {
	proxies := ParseProxies([]string{"10.0.0.0/8", "192.168.1.5", "garbage", ""})

	tests := []struct {
		name   string
		remote string
		real   string
		xff    string
		want   string
	}{
		{"untrusted ignores headers", "203.0.113.9:5555", "1.2.3.4", "", "203.0.113.9"},
		{"trusted uses X-Real-IP", "10.1.2.3:80", "1.2.3.4", "5.6.7.8", "1.2.3.4"},
		{"trusted falls back to XFF", "10.1.2.3:80", "", "5.6.7.8, 10.1.2.3", "5.6.7.8"},
		{"single IP entry trusted", "192.168.1.5:80", "1.2.3.4", "", "1.2.3.4"},
		{"invalid header ignored", "10.1.2.3:80", "not-an-ip", "", "10.1.2.3"},
		{"no port", "10.1.2.3", "", "", "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.real != "" {
				r.Header.Set("X-Real-IP", tt.real)
			}
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := proxies.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}

	if len(proxies) != 2 {
		t.Errorf("ParseProxies() kept %d entries, want 2", len(proxies))
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		cfg    config.SecurityConfig
		header string
		query  string
		want   int
	}{
		{"disabled", config.SecurityConfig{}, "", "", http.StatusNoContent},
		{"missing", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "", "", http.StatusUnauthorized},
		{"invalid", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "nope", "", http.StatusForbidden},
		{"valid header", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, "k2", "", http.StatusNoContent},
		{"valid query", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "", "k1", http.StatusNoContent},
		{"no keys configured", config.SecurityConfig{RequireAPIKey: true}, "k1", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			target := "/api/t/x"
			if tt.query != "" {
				target += "?api_key=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				r.Header.Set("X-API-Key", tt.header)
			}
			w := httptest.NewRecorder()

			APIKeyAuth(&cfg)(ok).ServeHTTP(w, r)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if w.Code >= 400 && !strings.Contains(w.Body.String(), `"code":"AUTH`) {
				t.Errorf("body = %q, want JSON error with code", w.Body.String())
			}
		})
	}
}

func TestLogger_RecordsRouteAndSession(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	router := chi.NewRouter()
	router.Use(Logger)
	router.Get("/t/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("gone"))
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/t/abc", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status=404", "bytes=4", "session=abc", "route=/t/{id}"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
