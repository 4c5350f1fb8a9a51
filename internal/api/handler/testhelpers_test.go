package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	mw "github.com/iconidentify/ytgrab/internal/api/middleware"
	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/viewmodel"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockBackend is a test implementation of viewmodel.Backend.
type mockBackend struct {
	mu    sync.Mutex
	calls int
	video *domain.VideoMetadata
	err   error
	gate  chan struct{}
}

func (m *mockBackend) FetchVideo(ctx context.Context, videoURL string) (*domain.VideoMetadata, error) {
	m.mu.Lock()
	m.calls++
	video, err, gate := m.video, m.err, m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	v := *video
	return &v, nil
}

func (m *mockBackend) DownloadURL(req domain.DownloadRequest) string {
	return "http://localhost:5000/api/download-video?id=" + req.VideoID.String() +
		"&format=" + req.Format.String() + "&quality=" + req.Quality.String()
}

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockSessions is a test implementation of SessionCounter.
type mockSessions struct {
	n int
}

func (m *mockSessions) Len() int { return m.n }

func sampleVideo() *domain.VideoMetadata {
	return &domain.VideoMetadata{
		ID:        "abc123",
		Title:     "T",
		Thumbnail: "u",
		Duration:  "3:00",
		Views:     "10",
	}
}

func newTestViewModel(backend *mockBackend) *viewmodel.ViewModel {
	return viewmodel.New(backend, nil, testLogger())
}

// formRequest builds a form POST carrying vm in its context.
func formRequest(vm *viewmodel.ViewModel, path string, values url.Values) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(mw.WithViewModel(req.Context(), vm))
}

// getRequest builds a GET carrying vm in its context.
func getRequest(vm *viewmodel.ViewModel, path string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	return req.WithContext(mw.WithViewModel(req.Context(), vm))
}
