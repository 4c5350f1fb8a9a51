package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/ytgrab/internal/api/handler"
	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/session"
	"github.com/iconidentify/ytgrab/internal/viewmodel"
	"github.com/iconidentify/ytgrab/pkg/backend"
)

const testCookie = "ytgrab_session"

func newTestServer(t *testing.T, backendHandler http.HandlerFunc) (*httptest.Server, *session.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	upstream := httptest.NewServer(backendHandler)
	t.Cleanup(upstream.Close)

	client := backend.NewClient(backend.Config{BaseURL: upstream.URL + "/api"}, logger)
	store := session.NewStore(func() *viewmodel.ViewModel {
		return viewmodel.New(client, nil, logger)
	}, time.Hour, logger)

	router := NewRouter(
		handler.NewUIHandler(context.Background(), 2*time.Second, logger),
		handler.NewHealthHandler(store, client.BaseURL()),
		store,
		testCookie,
		logger,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func okBackend(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fetch-video" || r.Method != http.MethodPost {
			t.Errorf("unexpected backend request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var body struct {
			URL string `json:"url"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.URL != "https://youtu.be/abc123" {
			t.Errorf("backend got url %q", body.URL)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"abc123","title":"T","thumbnail":"u","duration":"3:00","views":"10","description":"d"}`))
	}
}

func TestRouter_Health(t *testing.T) {
	srv, _ := newTestServer(t, okBackend(t))

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
		if resp.Header.Get("Set-Cookie") != "" {
			t.Errorf("GET %s should not issue a session cookie", path)
		}
	}
}

func TestRouter_StatsWithoutSession(t *testing.T) {
	srv, store := newTestServer(t, okBackend(t))

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if resp.Header.Get("Set-Cookie") != "" {
		t.Error("stats should not issue a session cookie")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("stats should carry CORS headers")
	}
	if store.Len() != 0 {
		t.Errorf("sessions = %d, want 0", store.Len())
	}
}

func TestRouter_FetchAndDownload(t *testing.T) {
	srv, store := newTestServer(t, okBackend(t))
	browser := newBrowser(t)

	resp, err := browser.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	readBody(t, resp)
	if store.Len() != 1 {
		t.Fatalf("sessions = %d, want 1", store.Len())
	}

	resp, err = browser.PostForm(srv.URL+"/fetch", url.Values{"url": {"  https://youtu.be/abc123  "}})
	if err != nil {
		t.Fatalf("POST /fetch: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /fetch status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}

	resp, err = browser.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	page := readBody(t, resp)
	for _, want := range []string{"<h2>T</h2>", "720p", "High Quality", "Standard Quality"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	resp, err = browser.PostForm(srv.URL+"/tab", url.Values{"tab": {"mp3"}})
	if err != nil {
		t.Fatalf("POST /tab: %v", err)
	}
	readBody(t, resp)

	resp, err = browser.PostForm(srv.URL+"/download", url.Values{"quality": {"high"}})
	if err != nil {
		t.Fatalf("POST /download: %v", err)
	}
	page = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /download status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(page, "/api/download-video?id=abc123&amp;format=mp3&amp;quality=high") {
		t.Errorf("page should navigate to the download URL:\n%s", page)
	}
	if !strings.Contains(page, "Your download for the high mp3 file should begin shortly.") {
		t.Error("page should show the download notice")
	}

	if store.Len() != 1 {
		t.Errorf("sessions = %d, want 1", store.Len())
	}
}

func TestRouter_BackendError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Video not found"}`))
	})
	browser := newBrowser(t)

	resp, err := browser.PostForm(srv.URL+"/fetch", url.Values{"url": {"https://youtu.be/abc123"}})
	if err != nil {
		t.Fatalf("POST /fetch: %v", err)
	}
	readBody(t, resp)

	resp, err = browser.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()

	var s domain.State
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if s.Phase != domain.PhaseError || s.Error != "Video not found" {
		t.Errorf("state = %+v, want error Video not found", s)
	}
}

func TestRouter_SessionsAreIsolated(t *testing.T) {
	srv, store := newTestServer(t, okBackend(t))
	alice, bob := newBrowser(t), newBrowser(t)

	resp, err := alice.PostForm(srv.URL+"/fetch", url.Values{"url": {"https://youtu.be/abc123"}})
	if err != nil {
		t.Fatalf("POST /fetch: %v", err)
	}
	readBody(t, resp)

	resp, err = bob.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()

	var s domain.State
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if s.Phase != domain.PhaseIdle || s.Video != nil {
		t.Errorf("second session state = %+v, want idle", s)
	}
	if store.Len() != 2 {
		t.Errorf("sessions = %d, want 2", store.Len())
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, okBackend(t))

	resp, err := http.Get(srv.URL + "/download")
	if err != nil {
		t.Fatalf("GET /download: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}
