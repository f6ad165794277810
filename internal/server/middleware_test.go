package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeAsker{configured: true})

	tests := []struct {
		method, path, wantMsg string
	}{
		{http.MethodGet, "/api/unknown", "Route GET /api/unknown not found"},
		{http.MethodPost, "/api/health", "Route POST /api/health not found"},
		{http.MethodDelete, "/nope", "Route DELETE /nope not found"},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, w.Code)
			continue
		}
		var e errorResponse
		if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if e.Error != "Not found" || e.Message != tc.wantMsg {
			t.Errorf("%s %s: unexpected body %+v", tc.method, tc.path, e)
		}
	}
}

func TestIndexServed(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeAsker{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "/api/ask") {
		t.Error("index page should post to /api/ask")
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		origins  []string
		origin   string
		wantACAO string
	}{
		{"default allows all", nil, "http://localhost:3000", "*"},
		{"explicit wildcard", []string{"*"}, "http://evil.example", "*"},
		{"allowed origin echoed", []string{"http://localhost:3000"}, "http://localhost:3000", "http://localhost:3000"},
		{"disallowed origin", []string{"http://localhost:3000"}, "http://evil.example", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newTestServer(t, &fakeAsker{configured: true}, func(c *Config) {
				c.CORSOrigins = tc.origins
			})

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tc.wantACAO {
				t.Errorf("Access-Control-Allow-Origin: got %q, want %q", got, tc.wantACAO)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	fa := &fakeAsker{configured: true}
	s, _ := newTestServer(t, fa)

	req := httptest.NewRequest(http.MethodOptions, "/api/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Allow-Methods: got %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
	if fa.calls() != 0 {
		t.Error("preflight must not reach the handler")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeAsker{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if id := w.Header().Get("X-Request-ID"); len(id) != 16 {
		t.Errorf("generated request ID: got %q", id)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if id := w.Header().Get("X-Request-ID"); id != "client-supplied" {
		t.Errorf("propagated request ID: got %q", id)
	}
}

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	got := ParseOrigins(" http://a.example/, ,http://b.example ")
	want := []string{"http://a.example", "http://b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseOrigins: got %v, want %v", got, want)
	}
	if ParseOrigins("") != nil {
		t.Error("empty input should yield nil")
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, status: http.StatusOK}
	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.status != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status: got %d / %d", rw.status, rec.Code)
	}
}
