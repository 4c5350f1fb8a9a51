package handler

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	mw "github.com/iconidentify/ytgrab/internal/api/middleware"
	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/viewmodel"
	"github.com/iconidentify/ytgrab/pkg/ui"
)

// UIHandler serves the web page and its form actions for the caller's
// view-model.
type UIHandler struct {
	baseCtx    context.Context
	submitWait time.Duration
	logger     *slog.Logger
}

// NewUIHandler creates a new UI handler. Fetches started by the page run under
// baseCtx, not the request context, so they survive the redirect back to the
// page; submitWait bounds how long a submit waits before showing Loading.
func NewUIHandler(baseCtx context.Context, submitWait time.Duration, logger *slog.Logger) *UIHandler {
	return &UIHandler{
		baseCtx:    baseCtx,
		submitWait: submitWait,
		logger:     logger,
	}
}

func (h *UIHandler) viewModel(w http.ResponseWriter, r *http.Request) *viewmodel.ViewModel {
	vm := mw.ViewModel(r.Context())
	if vm == nil {
		h.logger.Error("request without session view-model", "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "session unavailable")
	}
	return vm
}

func (h *UIHandler) render(w http.ResponseWriter, page ui.Page) {
	var buf bytes.Buffer
	if err := ui.RenderIndex(&buf, page); err != nil {
		h.logger.Error("render page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func backToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index handles GET / - renders the page for the current state.
func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	h.render(w, ui.NewPage(vm.State()))
}

// Fetch handles POST /fetch - submits the URL from the form.
func (h *UIHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	vm.SetInput(r.PostForm.Get("url"))
	h.start(w, r, vm)
}

// Retry handles POST /retry - the "Try Again" action.
func (h *UIHandler) Retry(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	h.start(w, r, vm)
}

func (h *UIHandler) start(w http.ResponseWriter, r *http.Request, vm *viewmodel.ViewModel) {
	done, err := vm.Start(h.baseCtx)
	if err != nil {
		if viewmodel.IsInFlight(err) {
			h.logger.Debug("submit ignored while loading")
		}
		backToIndex(w, r)
		return
	}

	// Give fast backends a chance to resolve so the page skips the Loading flash.
	timer := time.NewTimer(h.submitWait)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	case <-r.Context().Done():
	}
	backToIndex(w, r)
}

// Tab handles POST /tab - switches the active format tab.
func (h *UIHandler) Tab(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	if err := vm.SelectTab(domain.Format(r.PostForm.Get("tab"))); err != nil {
		writeError(w, http.StatusBadRequest, "invalid tab")
		return
	}
	backToIndex(w, r)
}

// Download handles POST /download - renders the page with the hand-off notice
// and navigates the browser to the backend download URL.
func (h *UIHandler) Download(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	target, err := vm.Download(domain.Quality(r.PostForm.Get("quality")))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoVideo):
			backToIndex(w, r)
		case errors.Is(err, domain.ErrInvalidQuality), errors.Is(err, domain.ErrInvalidFormat):
			writeError(w, http.StatusBadRequest, "invalid quality")
		default:
			h.logger.Error("download failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to start download")
		}
		return
	}

	page := ui.NewPage(vm.State())
	page.Redirect = template.URL(target)
	h.render(w, page)
}

// DismissNotice handles POST /notice/dismiss.
func (h *UIHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	vm.DismissNotice()
	backToIndex(w, r)
}

// Reset handles POST /reset - cancels any fetch and clears results.
func (h *UIHandler) Reset(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	vm.Reset()
	backToIndex(w, r)
}

// State handles GET /api/state - JSON snapshot of the caller's view-model.
func (h *UIHandler) State(w http.ResponseWriter, r *http.Request) {
	vm := h.viewModel(w, r)
	if vm == nil {
		return
	}
	writeJSON(w, http.StatusOK, vm.State())
}
