// Package ui provides the terminal user interface for ytgrab.
package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/ytgrab/internal/domain"
	"github.com/iconidentify/ytgrab/internal/viewmodel"
)

// App is the main TUI application.
type App struct {
	app        *tview.Application
	pages      *tview.Pages
	vm         *viewmodel.ViewModel
	backendURL string
	logger     *slog.Logger
	ctx        context.Context
	cancel     context.CancelFunc

	// UI components
	mainFlex    *tview.Flex
	header      *tview.TextView
	footer      *tview.TextView
	statusBar   *tview.TextView
	input       *tview.InputField
	hint        *tview.TextView
	fetchButton *tview.Button
	content     *tview.Pages
	resultView  *tview.TextView
	errorView   *tview.TextView
	retryButton *tview.Button
	mp4Button   *tview.Button
	mp3Button   *tview.Button
	qualityList *tview.List
	noticeModal *tview.Modal
	helpView    *tview.TextView

	// State
	listTab     domain.Format
	shownNotice string
	showingHelp bool
}

// NewApp creates a new TUI application around vm.
func NewApp(vm *viewmodel.ViewModel, backendURL string, logger *slog.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
		vm:         vm,
		backendURL: backendURL,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	a.setupUI()

	// Listeners may fire on the event goroutine, which QueueUpdateDraw would
	// block forever; queue from a fresh goroutine and draw the latest snapshot.
	vm.Subscribe(func(domain.State) {
		go a.app.QueueUpdateDraw(func() {
			a.render(a.vm.State())
		})
	})
	a.render(vm.State())
	return a
}

// setupUI initializes all UI components.
func (a *App) setupUI() {
	// Header
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.header.SetBackgroundColor(tcell.ColorDarkRed)
	a.header.SetText(fmt.Sprintf("\n[white::b]YouTube Downloader[white] | Backend: [green]%s", tview.Escape(a.backendURL)))

	// Footer with keybindings
	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]Enter[white]:Fetch [yellow]Tab[white]:Next [yellow]Ctrl-R[white]:Reset [yellow]?[white]:Help [yellow]q[white]:Quit")
	a.footer.SetBackgroundColor(tcell.ColorDarkRed)

	// Status bar
	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	a.createSearchPanel()
	a.createContentPanels()
	a.createNoticeModal()
	a.createHelpPanel()

	searchRow := tview.NewFlex().
		AddItem(a.input, 0, 1, true).
		AddItem(nil, 1, 0, false).
		AddItem(a.fetchButton, 15, 0, false)

	mainView := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(searchRow, 1, 0, true).
		AddItem(a.hint, 1, 0, false).
		AddItem(a.content, 0, 1, false)
	mainView.SetBorder(true).SetTitle(" Fetch ")

	a.pages.AddPage("main", mainView, true, true)
	a.pages.AddPage("help", a.helpView, true, false)
	a.pages.AddPage("notice", a.noticeModal, true, false)

	// Main layout
	a.mainFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	// Global key bindings
	a.app.SetInputCapture(a.handleGlobalKeys)

	a.app.SetRoot(a.mainFlex, true)
	a.app.SetFocus(a.input)
}

// createSearchPanel creates the URL input and fetch button.
func (a *App) createSearchPanel() {
	a.input = tview.NewInputField().
		SetLabel("URL: ").
		SetPlaceholder("Paste YouTube URL here...").
		SetFieldWidth(0).
		SetFieldBackgroundColor(tcell.ColorDarkBlue)
	a.input.SetChangedFunc(func(text string) {
		a.hint.SetText(idHint(text))
	})
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.submit()
		}
	})

	a.hint = tview.NewTextView().
		SetDynamicColors(true)

	a.fetchButton = tview.NewButton(fetchLabel(false)).
		SetSelectedFunc(a.submit)
}

// createContentPanels creates one panel per phase.
func (a *App) createContentPanels() {
	a.content = tview.NewPages()

	idle := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("\nDownload YouTube videos in high quality MP4 or extract MP3 audio.\n\n[gray]Example: https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	loading := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("\n[yellow]Fetching video information...\n\n[gray]This may take a few seconds")

	// Error panel
	a.errorView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.retryButton = tview.NewButton("Try Again").
		SetSelectedFunc(a.retry)
	errorPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.errorView, 0, 1, false).
		AddItem(tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(a.retryButton, 13, 0, true).
			AddItem(nil, 0, 1, false), 1, 0, true)

	// Loaded panel: metadata on the left, download options on the right
	a.resultView = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	a.resultView.SetBorder(true).SetTitle(" Video ")

	a.mp4Button = tview.NewButton(tabLabel(domain.FormatMP4, true)).
		SetSelectedFunc(func() { a.selectTab(domain.FormatMP4) })
	a.mp3Button = tview.NewButton(tabLabel(domain.FormatMP3, false)).
		SetSelectedFunc(func() { a.selectTab(domain.FormatMP3) })

	a.qualityList = tview.NewList()
	a.qualityList.SetBorder(true).SetTitle(" Quality ")

	tabs := tview.NewFlex().
		AddItem(a.mp4Button, 0, 1, false).
		AddItem(nil, 1, 0, false).
		AddItem(a.mp3Button, 0, 1, false)

	options := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tabs, 1, 0, false).
		AddItem(a.qualityList, 0, 1, true)
	options.SetBorder(true).SetTitle(" Download Options ")

	loaded := tview.NewFlex().
		AddItem(a.resultView, 0, 1, false).
		AddItem(options, 0, 1, true)

	a.content.AddPage(pageIdle, idle, true, true)
	a.content.AddPage(pageLoading, loading, true, false)
	a.content.AddPage(pageError, errorPanel, true, false)
	a.content.AddPage(pageLoaded, loaded, true, false)
}

// createNoticeModal creates the download hand-off notice.
func (a *App) createNoticeModal() {
	a.noticeModal = tview.NewModal().
		AddButtons([]string{"Close"}).
		SetDoneFunc(func(int, string) {
			a.vm.DismissNotice()
		})
}

// handleGlobalKeys handles global keyboard shortcuts.
func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlR:
		a.vm.Reset()
		return nil
	case tcell.KeyTab:
		a.cycleFocus(1)
		return nil
	case tcell.KeyBacktab:
		a.cycleFocus(-1)
		return nil
	}

	// Don't intercept when typing in the input field
	if a.app.GetFocus() == a.input {
		if event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.fetchButton)
			return nil
		}
		return event
	}

	switch event.Key() {
	case tcell.KeyRune:
		switch event.Rune() {
		case '?':
			a.toggleHelp()
			return nil
		case 'q', 'Q':
			a.Stop()
			return nil
		case '/':
			a.app.SetFocus(a.input)
			return nil
		}
	case tcell.KeyEscape:
		if a.showingHelp {
			a.toggleHelp()
			return nil
		}
	}

	return event
}

// focusRing lists the focusable widgets for the current phase.
func (a *App) focusRing() []tview.Primitive {
	ring := []tview.Primitive{a.input, a.fetchButton}
	switch name, _ := a.content.GetFrontPage(); name {
	case pageError:
		ring = append(ring, a.retryButton)
	case pageLoaded:
		ring = append(ring, a.mp4Button, a.mp3Button, a.qualityList)
	}
	return ring
}

// cycleFocus moves focus dir steps around the focus ring.
func (a *App) cycleFocus(dir int) {
	if a.shownNotice != "" || a.showingHelp {
		return
	}
	ring := a.focusRing()
	current := a.app.GetFocus()
	next := 0
	for i, p := range ring {
		if p == current {
			next = (i + dir + len(ring)) % len(ring)
			break
		}
	}
	a.app.SetFocus(ring[next])
}

// toggleHelp switches between the main page and help.
func (a *App) toggleHelp() {
	a.showingHelp = !a.showingHelp
	if a.showingHelp {
		a.pages.SwitchToPage("help")
		return
	}
	a.pages.SwitchToPage("main")
	if a.shownNotice != "" {
		a.pages.ShowPage("notice")
	}
	a.app.SetFocus(a.input)
}

// submit sends the input to the view-model without blocking the UI.
func (a *App) submit() {
	a.vm.SetInput(a.input.GetText())
	a.start()
}

// retry re-runs the last submit, as "Try Again".
func (a *App) retry() {
	a.start()
}

func (a *App) start() {
	if _, err := a.vm.Start(a.ctx); err != nil && viewmodel.IsInFlight(err) {
		a.logger.Debug("submit ignored while loading")
	}
}

// selectTab switches the download format and focuses its qualities.
func (a *App) selectTab(f domain.Format) {
	if err := a.vm.SelectTab(f); err != nil {
		a.logger.Warn("select tab failed", "format", f, "error", err)
		return
	}
	a.app.SetFocus(a.qualityList)
}

// download hands the selected quality to the view-model.
func (a *App) download(q domain.Quality) {
	target, err := a.vm.Download(q)
	if err != nil {
		a.logger.Warn("download not started", "quality", q, "error", err)
		return
	}
	a.logger.Info("opened download", "url", target)
}

// render applies a view-model snapshot to the widgets. It must run on the
// UI goroutine.
func (a *App) render(s domain.State) {
	a.statusBar.SetText(" " + statusText(s))
	a.fetchButton.SetLabel(fetchLabel(s.Loading()))

	page := contentPage(s.Phase)
	if name, _ := a.content.GetFrontPage(); name != page {
		a.content.SwitchToPage(page)
		switch page {
		case pageError:
			a.app.SetFocus(a.retryButton)
		case pageLoaded:
			a.app.SetFocus(a.qualityList)
		default:
			a.app.SetFocus(a.input)
		}
	}

	a.errorView.SetText("\n[red]" + tview.Escape(s.Error))
	a.resultView.SetText(videoText(s.Video))
	a.renderTabs(s.ActiveTab)
	a.renderNotice(s.Notice)
}

func (a *App) renderTabs(active domain.Format) {
	a.mp4Button.SetLabel(tabLabel(domain.FormatMP4, active == domain.FormatMP4))
	a.mp3Button.SetLabel(tabLabel(domain.FormatMP3, active == domain.FormatMP3))

	if a.listTab == active {
		return
	}
	a.listTab = active
	a.qualityList.Clear()
	for _, opt := range domain.Qualities(active) {
		q := opt.Quality
		a.qualityList.AddItem(opt.Label, opt.Group, 0, func() {
			a.download(q)
		})
	}
}

func (a *App) renderNotice(notice string) {
	if notice == a.shownNotice {
		return
	}
	a.shownNotice = notice

	if notice == "" {
		a.pages.HidePage("notice")
		if name, _ := a.content.GetFrontPage(); name == pageLoaded && !a.showingHelp {
			a.app.SetFocus(a.qualityList)
		}
		return
	}
	a.noticeModal.SetText(notice)
	if !a.showingHelp {
		a.pages.ShowPage("notice")
		a.app.SetFocus(a.noticeModal)
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.cancel()
	return a.app.Run()
}

// Stop stops the TUI application and abandons any pending fetch.
func (a *App) Stop() {
	a.cancel()
	a.vm.Reset()
	a.app.Stop()
}
