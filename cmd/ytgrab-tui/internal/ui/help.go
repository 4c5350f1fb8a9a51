package ui

import (
	"github.com/rivo/tview"
)

// createHelpPanel creates the help panel.
func (a *App) createHelpPanel() {
	a.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.helpView.SetBorder(true).SetTitle(" Help ")

	helpText := `[yellow::b]ytgrab - YouTube Downloader[white]

Fetch a video's details from the backend, then pick a format and quality.
The download opens in your web browser; the backend streams the file.

[yellow::b]KEYS[white]
[cyan]Enter[white]        Fetch the URL in the input field
[cyan]Tab[white]          Next control
[cyan]Shift+Tab[white]    Previous control
[cyan]Ctrl+R[white]       Clear results and cancel a pending fetch
[cyan]/[white]            Jump to the URL input
[cyan]Escape[white]       Leave the URL input / close help
[cyan]?[white]            Help           - This help screen
[cyan]q[white]            Quit           - Exit (outside the URL input)
[cyan]Ctrl+C[white]       Quit

[yellow::b]DOWNLOADS[white]
[white::b]MP4 Video[white]    1080p, 720p, 480p (High Quality)
             360p, 240p, 144p (Standard Quality)
[white::b]MP3 Audio[white]    320kbps, 192kbps, 128kbps

Choose a tab, then press [cyan]Enter[white] on a quality. A notice confirms the
hand-off; close it with [cyan]Enter[white].

[yellow::b]CONFIGURATION[white]
[cyan]BACKEND_URL[white]         Backend base URL (default: http://localhost:5000/api)
[cyan]BACKEND_TIMEOUT[white]     Request timeout (default: none)
[cyan]BACKEND_RATE_LIMIT[white]  Requests per second (default: unlimited)
[cyan]LOG_FILE[white]            Log file (default: ytgrab-tui.log in the temp dir)
[cyan]LOG_LEVEL[white]           Log level (default: info)
[cyan]BROWSER[white]             Command used to open downloads

[dim]Press ? or Escape to return[white]
`

	a.helpView.SetText(helpText)
}
