package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/iconidentify/ytgrab/internal/domain"
)

// Content page names, one per phase.
const (
	pageIdle    = "idle"
	pageLoading = "loading"
	pageError   = "error"
	pageLoaded  = "loaded"
)

// contentPage returns the content page shown for a phase.
func contentPage(p domain.Phase) string {
	switch p {
	case domain.PhaseLoading:
		return pageLoading
	case domain.PhaseError:
		return pageError
	case domain.PhaseLoaded:
		return pageLoaded
	}
	return pageIdle
}

// videoText formats metadata for the result pane.
func videoText(v *domain.VideoMetadata) string {
	if v == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[white::b]%s[-:-:-]\n\n", tview.Escape(v.Title))
	fmt.Fprintf(&b, "[gray]Duration:[white] %s   [gray]Views:[white] %s\n",
		tview.Escape(v.Duration), tview.Escape(v.Views))
	fmt.Fprintf(&b, "[gray]Thumbnail:[white] %s\n", tview.Escape(v.Thumbnail))
	if v.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", tview.Escape(v.Description))
	}
	return b.String()
}

// statusText is the status bar line for a state.
func statusText(s domain.State) string {
	switch s.Phase {
	case domain.PhaseLoading:
		return "[yellow]Fetching video information..."
	case domain.PhaseError:
		return "[red]" + tview.Escape(s.Error)
	case domain.PhaseLoaded:
		return "[green]Loaded[white] " + tview.Escape(s.Video.Title)
	}
	return "Paste a YouTube URL and press Enter"
}

// idHint shows the video id recognised in the input, if any.
func idHint(input string) string {
	id, ok := domain.ExtractVideoID(input)
	if !ok {
		return ""
	}
	return fmt.Sprintf("[gray]Video ID: [green]%s", id)
}

// tabLabel is the button label for a format tab.
func tabLabel(f domain.Format, active bool) string {
	if active {
		return "> " + f.Label() + " <"
	}
	return f.Label()
}

// fetchLabel is the fetch button label; it reads as disabled while loading.
func fetchLabel(loading bool) string {
	if loading {
		return "Fetching..."
	}
	return "Fetch Video"
}
