// Package browser hands download URLs to the user's web browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Opener launches the system browser. It satisfies viewmodel.Navigator.
type Opener struct {
	goos    string
	command string
	start   func(cmd *exec.Cmd) error
}

// NewOpener creates an opener. A non-empty command (typically $BROWSER)
// replaces the platform default and may carry its own arguments.
func NewOpener(command string) *Opener {
	return &Opener{
		goos:    runtime.GOOS,
		command: strings.TrimSpace(command),
		start:   startDetached,
	}
}

// Command builds the process that opens target.
func (o *Opener) Command(target string) *exec.Cmd {
	if o.command != "" {
		fields := strings.Fields(o.command)
		args := append(fields[1:], target)
		return exec.Command(fields[0], args...)
	}

	switch o.goos {
	case "darwin":
		return exec.Command("open", target)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return exec.Command("xdg-open", target)
	}
}

// Navigate opens target without waiting for the browser to exit.
func (o *Opener) Navigate(target string) error {
	cmd := o.Command(target)
	if err := o.start(cmd); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child; its exit status says nothing about the download.
	go cmd.Wait()
	return nil
}
