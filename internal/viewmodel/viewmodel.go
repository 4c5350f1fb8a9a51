// Package viewmodel holds the client UI state and mediates calls to the backend.
package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/iconidentify/ytgrab/internal/domain"
)

// Fetcher retrieves video metadata from the backend.
type Fetcher interface {
	FetchVideo(ctx context.Context, videoURL string) (*domain.VideoMetadata, error)
}

// URLBuilder builds the backend download URL for a request.
type URLBuilder interface {
	DownloadURL(req domain.DownloadRequest) string
}

// Backend is the full backend contract the view-model needs.
type Backend interface {
	Fetcher
	URLBuilder
}

// Navigator sends the client to a URL. Implementations must not block on the
// download itself.
type Navigator interface {
	Navigate(target string) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(target string) error

// Navigate calls f(target).
func (f NavigatorFunc) Navigate(target string) error {
	return f(target)
}

// Listener is notified with a snapshot after every state change.
type Listener func(domain.State)

// ViewModel is the client state machine. It is safe for concurrent use.
type ViewModel struct {
	backend   Backend
	navigator Navigator
	logger    *slog.Logger

	mu        sync.Mutex
	state     domain.State
	seq       uint64
	cancel    context.CancelFunc
	listeners []Listener
}

// New creates a view-model in the Idle state with the mp4 tab active.
// A nil navigator makes Download only report the URL.
func New(backend Backend, navigator Navigator, logger *slog.Logger) *ViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewModel{
		backend:   backend,
		navigator: navigator,
		logger:    logger,
		state: domain.State{
			Phase:     domain.PhaseIdle,
			ActiveTab: domain.FormatMP4,
		},
	}
}

// Subscribe registers l to receive snapshots after every change.
// Listeners run on the goroutine that caused the change, outside the lock.
func (vm *ViewModel) Subscribe(l Listener) {
	vm.mu.Lock()
	vm.listeners = append(vm.listeners, l)
	vm.mu.Unlock()
}

// State returns a snapshot of the current state.
func (vm *ViewModel) State() domain.State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshotLocked()
}

func (vm *ViewModel) snapshotLocked() domain.State {
	s := vm.state
	if s.Video != nil {
		v := *s.Video
		s.Video = &v
	}
	return s
}

// update applies fn under the lock and notifies listeners if fn reports a change.
func (vm *ViewModel) update(fn func(s *domain.State) bool) {
	vm.mu.Lock()
	changed := fn(&vm.state)
	snapshot := vm.snapshotLocked()
	listeners := append([]Listener(nil), vm.listeners...)
	vm.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		l(snapshot)
	}
}

// SetInput replaces the raw URL input. It is ignored while Loading so the
// input keeps naming the URL being fetched.
func (vm *ViewModel) SetInput(raw string) {
	vm.update(func(s *domain.State) bool {
		if s.Input == raw || s.Phase == domain.PhaseLoading {
			return false
		}
		s.Input = raw
		return true
	})
}

// pendingFetch is a fetch that has moved the view-model into Loading.
type pendingFetch struct {
	seq uint64
	url string
	ctx context.Context
}

// begin runs the synchronous half of a submit: validation and the move to
// Loading. It returns nil when no fetch should be issued.
func (vm *ViewModel) begin(ctx context.Context) (*pendingFetch, error) {
	var (
		pending *pendingFetch
		result  error
	)

	vm.update(func(s *domain.State) bool {
		if s.Phase == domain.PhaseLoading {
			result = domain.ErrFetchInFlight
			return false
		}

		vm.seq++
		s.Video = nil
		s.Error = ""
		s.Notice = ""

		url, err := domain.ValidateQuery(s.Input)
		if err != nil {
			s.Phase = domain.PhaseError
			s.Error = domain.UserMessage(err)
			result = err
			return true
		}

		fetchCtx, cancel := context.WithCancel(ctx)
		vm.cancel = cancel
		s.Phase = domain.PhaseLoading
		pending = &pendingFetch{seq: vm.seq, url: url, ctx: fetchCtx}
		return true
	})

	return pending, result
}

// resolve performs the fetch and applies its outcome if it is still current.
func (vm *ViewModel) resolve(p *pendingFetch) error {
	video, err := vm.backend.FetchVideo(p.ctx, p.url)

	applied := false
	vm.update(func(s *domain.State) bool {
		if p.seq != vm.seq || s.Phase != domain.PhaseLoading {
			return false
		}
		applied = true
		if vm.cancel != nil {
			vm.cancel()
			vm.cancel = nil
		}
		if err != nil {
			s.Phase = domain.PhaseError
			s.Error = domain.UserMessage(err)
			return true
		}
		s.Phase = domain.PhaseLoaded
		s.Video = video
		return true
	})

	if !applied {
		vm.logger.Debug("discarding stale fetch result", "seq", p.seq, "url", p.url)
		return context.Canceled
	}
	if err != nil {
		vm.logger.Warn("fetch video failed", "url", p.url, "error", err)
		return err
	}
	vm.logger.Info("video loaded", "url", p.url, "video_id", video.ID)
	return nil
}

// Submit validates the current input and fetches its metadata, blocking until
// the fetch resolves. Invalid input moves to Error without a network call.
// Submitting while Loading returns domain.ErrFetchInFlight and changes nothing.
func (vm *ViewModel) Submit(ctx context.Context) error {
	p, err := vm.begin(ctx)
	if p == nil {
		return err
	}
	return vm.resolve(p)
}

// Start is Submit without waiting: validation and the move to Loading happen
// before it returns, and the returned channel closes once the fetch resolves.
func (vm *ViewModel) Start(ctx context.Context) (<-chan struct{}, error) {
	done := make(chan struct{})
	p, err := vm.begin(ctx)
	if p == nil {
		close(done)
		return done, err
	}
	go func() {
		defer close(done)
		_ = vm.resolve(p)
	}()
	return done, nil
}

// Retry re-submits the current input, as the "Try Again" action does.
func (vm *ViewModel) Retry(ctx context.Context) (<-chan struct{}, error) {
	return vm.Start(ctx)
}

// Reset cancels any in-flight fetch and returns to Idle, keeping the input
// and active tab.
func (vm *ViewModel) Reset() {
	vm.update(func(s *domain.State) bool {
		vm.seq++
		if vm.cancel != nil {
			vm.cancel()
			vm.cancel = nil
		}
		*s = domain.State{
			Phase:     domain.PhaseIdle,
			Input:     s.Input,
			ActiveTab: s.ActiveTab,
		}
		return true
	})
}

// SelectTab switches the active format tab.
func (vm *ViewModel) SelectTab(f domain.Format) error {
	if !f.Valid() {
		return domain.ErrInvalidFormat
	}
	vm.update(func(s *domain.State) bool {
		if s.ActiveTab == f {
			return false
		}
		s.ActiveTab = f
		return true
	})
	return nil
}

// Download hands the download URL for the loaded video to the navigator and
// shows the hand-off notice. It returns the URL it navigated to.
//
// Without loaded metadata it is a no-op returning domain.ErrNoVideo. A quality
// outside the active tab returns domain.ErrInvalidQuality. Navigator failures
// are logged only; the outcome of the download is never observed.
func (vm *ViewModel) Download(q domain.Quality) (string, error) {
	var req domain.DownloadRequest
	var reqErr error

	vm.mu.Lock()
	seq := vm.seq
	if vm.state.Video == nil {
		reqErr = domain.ErrNoVideo
	} else {
		req = domain.DownloadRequest{
			VideoID: vm.state.Video.ID,
			Format:  vm.state.ActiveTab,
			Quality: q,
		}
		reqErr = req.Validate()
	}
	vm.mu.Unlock()

	if reqErr != nil {
		return "", reqErr
	}

	target := vm.backend.DownloadURL(req)
	if vm.navigator != nil {
		if err := vm.navigator.Navigate(target); err != nil {
			vm.logger.Error("navigate to download failed", "url", target, "error", err)
		}
	}
	vm.logger.Info("download initiated",
		"video_id", req.VideoID,
		"format", req.Format,
		"quality", req.Quality,
	)

	// A submit or reset since the lock was released owns the state now.
	notice := req.NoticeText()
	vm.update(func(s *domain.State) bool {
		if vm.seq != seq {
			return false
		}
		s.Notice = notice
		return true
	})
	return target, nil
}

// DismissNotice clears the notice overlay without touching the main state.
func (vm *ViewModel) DismissNotice() {
	vm.update(func(s *domain.State) bool {
		if s.Notice == "" {
			return false
		}
		s.Notice = ""
		return true
	})
}

// IsInFlight reports whether err means a fetch was already running.
func IsInFlight(err error) bool {
	return errors.Is(err, domain.ErrFetchInFlight)
}
