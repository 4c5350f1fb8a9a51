package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/ytgrab/internal/domain"
)

func newTestUIHandler() *UIHandler {
	return NewUIHandler(context.Background(), 2*time.Second, testLogger())
}

func TestUIHandler_Index(t *testing.T) {
	h := newTestUIHandler()
	vm := newTestViewModel(&mockBackend{})

	w := httptest.NewRecorder()
	h.Index(w, getRequest(vm, "/"))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "Fetch Video") {
		t.Error("page should contain the fetch button")
	}
}

func TestUIHandler_MissingViewModel(t *testing.T) {
	h := newTestUIHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.Index(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestUIHandler_Fetch_Success(t *testing.T) {
	backend := &mockBackend{video: sampleVideo()}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()

	w := httptest.NewRecorder()
	h.Fetch(w, formRequest(vm, "/fetch", url.Values{"url": {"https://www.youtube.com/watch?v=abc123"}}))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	s := vm.State()
	if s.Phase != domain.PhaseLoaded || s.Video.ID != "abc123" {
		t.Errorf("state = %+v, want loaded abc123", s)
	}
}

func TestUIHandler_Fetch_InvalidURL(t *testing.T) {
	backend := &mockBackend{video: sampleVideo()}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()

	w := httptest.NewRecorder()
	h.Fetch(w, formRequest(vm, "/fetch", url.Values{"url": {"https://vimeo.com/1"}}))

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if backend.callCount() != 0 {
		t.Errorf("fetch calls = %d, want 0", backend.callCount())
	}
	if s := vm.State(); s.Error != "Please enter a valid YouTube URL" {
		t.Errorf("Error = %q", s.Error)
	}
}

func TestUIHandler_Fetch_SlowBackendShowsLoading(t *testing.T) {
	backend := &mockBackend{video: sampleVideo(), gate: make(chan struct{})}
	vm := newTestViewModel(backend)
	h := NewUIHandler(context.Background(), 10*time.Millisecond, testLogger())

	w := httptest.NewRecorder()
	h.Fetch(w, formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/abc123"}}))

	if vm.State().Phase != domain.PhaseLoading {
		t.Fatalf("Phase = %q, want loading", vm.State().Phase)
	}

	page := httptest.NewRecorder()
	h.Index(page, getRequest(vm, "/"))
	if !strings.Contains(page.Body.String(), "Fetching video information...") {
		t.Error("page should show loading while the fetch is pending")
	}

	// A second submit while loading is ignored.
	w2 := httptest.NewRecorder()
	h.Fetch(w2, formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/other"}}))
	if w2.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w2.Code, http.StatusSeeOther)
	}
	if got := vm.State().Input; got != "https://youtu.be/abc123" {
		t.Errorf("Input = %q, want the URL being fetched", got)
	}

	close(backend.gate)
	deadline := time.Now().Add(2 * time.Second)
	for vm.State().Phase == domain.PhaseLoading {
		if time.Now().After(deadline) {
			t.Fatal("fetch did not resolve")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if backend.callCount() != 1 {
		t.Errorf("fetch calls = %d, want 1", backend.callCount())
	}
}

func TestUIHandler_Retry(t *testing.T) {
	backend := &mockBackend{err: &domain.BackendError{StatusCode: 404, Message: "Video not found"}}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()

	h.Fetch(httptest.NewRecorder(), formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/abc123"}}))
	if vm.State().Error != "Video not found" {
		t.Fatalf("Error = %q, want Video not found", vm.State().Error)
	}

	backend.mu.Lock()
	backend.err = nil
	backend.video = sampleVideo()
	backend.mu.Unlock()

	h.Retry(httptest.NewRecorder(), formRequest(vm, "/retry", nil))
	if vm.State().Phase != domain.PhaseLoaded {
		t.Errorf("Phase = %q, want loaded", vm.State().Phase)
	}
}

func TestUIHandler_Tab(t *testing.T) {
	vm := newTestViewModel(&mockBackend{})
	h := newTestUIHandler()

	w := httptest.NewRecorder()
	h.Tab(w, formRequest(vm, "/tab", url.Values{"tab": {"mp3"}}))
	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if vm.State().ActiveTab != domain.FormatMP3 {
		t.Errorf("ActiveTab = %q, want mp3", vm.State().ActiveTab)
	}

	w = httptest.NewRecorder()
	h.Tab(w, formRequest(vm, "/tab", url.Values{"tab": {"wav"}}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func loadedHandlerViewModel(t *testing.T) (*UIHandler, *mockBackend, func() domain.State, *httptest.ResponseRecorder) {
	t.Helper()
	backend := &mockBackend{video: sampleVideo()}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()
	h.Fetch(httptest.NewRecorder(), formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/abc123"}}))

	w := httptest.NewRecorder()
	h.Download(w, formRequest(vm, "/download", url.Values{"quality": {"720"}}))
	return h, backend, vm.State, w
}

func TestUIHandler_Download(t *testing.T) {
	_, _, state, w := loadedHandlerViewModel(t)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if strings.Count(body, "id=abc123&amp;format=mp4&amp;quality=720") != 1 {
		t.Errorf("page should navigate to the download URL exactly once:\n%s", body)
	}
	if !strings.Contains(body, "Your download for the 720 mp4 file should begin shortly.") {
		t.Error("page should show the download notice")
	}
	if state().Notice != "Your download for the 720 mp4 file should begin shortly." {
		t.Errorf("Notice = %q", state().Notice)
	}
}

func TestUIHandler_Download_WithoutVideo(t *testing.T) {
	vm := newTestViewModel(&mockBackend{})
	h := newTestUIHandler()

	w := httptest.NewRecorder()
	h.Download(w, formRequest(vm, "/download", url.Values{"quality": {"720"}}))

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if vm.State().Notice != "" {
		t.Error("notice should stay empty without a video")
	}
}

func TestUIHandler_Download_BadQuality(t *testing.T) {
	backend := &mockBackend{video: sampleVideo()}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()
	h.Fetch(httptest.NewRecorder(), formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/abc123"}}))

	w := httptest.NewRecorder()
	h.Download(w, formRequest(vm, "/download", url.Values{"quality": {"high"}}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUIHandler_DismissNotice(t *testing.T) {
	backend := &mockBackend{video: sampleVideo()}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()
	h.Fetch(httptest.NewRecorder(), formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/abc123"}}))
	h.Download(httptest.NewRecorder(), formRequest(vm, "/download", url.Values{"quality": {"360"}}))

	w := httptest.NewRecorder()
	h.DismissNotice(w, formRequest(vm, "/notice/dismiss", nil))

	s := vm.State()
	if s.Notice != "" {
		t.Errorf("Notice = %q, want empty", s.Notice)
	}
	if s.Phase != domain.PhaseLoaded || s.Video == nil {
		t.Errorf("state changed by dismiss: %+v", s)
	}
}

func TestUIHandler_Reset(t *testing.T) {
	backend := &mockBackend{video: sampleVideo()}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()
	h.Fetch(httptest.NewRecorder(), formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/abc123"}}))

	h.Reset(httptest.NewRecorder(), formRequest(vm, "/reset", nil))

	if s := vm.State(); s.Phase != domain.PhaseIdle || s.Video != nil {
		t.Errorf("state = %+v, want idle", s)
	}
}

func TestUIHandler_State(t *testing.T) {
	backend := &mockBackend{video: sampleVideo()}
	vm := newTestViewModel(backend)
	h := newTestUIHandler()
	h.Fetch(httptest.NewRecorder(), formRequest(vm, "/fetch", url.Values{"url": {"https://youtu.be/abc123"}}))

	w := httptest.NewRecorder()
	h.State(w, getRequest(vm, "/api/state"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var s domain.State
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if s.Phase != domain.PhaseLoaded || s.Video == nil || *s.Video != *sampleVideo() {
		t.Errorf("state = %+v", s)
	}
	if s.ActiveTab != domain.FormatMP4 {
		t.Errorf("ActiveTab = %q, want mp4", s.ActiveTab)
	}
}
