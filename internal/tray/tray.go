// Package tray provides the desktop system tray menu for the HandMade
// drawing board.
package tray

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu. Callbacks are registered before Run and
// invoked from the menu goroutine.
type Tray struct {
	onToggle  func(enabled bool)
	onClear   func()
	onRelearn func()
	onViewer  func()
	onQuit    func()
	enabled   bool
	mu        sync.RWMutex

	menuToggle    *systray.MenuItem
	menuLastEvent *systray.MenuItem
}

// New creates a new Tray with drawing enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback invoked when drawing is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnClear sets the callback invoked by "Clear Board".
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnRelearn sets the callback invoked by "Relearn Background".
func (t *Tray) OnRelearn(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRelearn = fn
}

// OnViewer sets the callback invoked by "Open Viewer...".
func (t *Tray) OnViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback invoked by "Quit".
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It must be called from the main goroutine and blocks
// until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("HandMade")
	systray.SetTooltip("HandMade gesture drawing board")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle drawing")
	systray.AddSeparator()

	t.menuLastEvent = systray.AddMenuItem("Last: none", "Last board event")
	t.menuLastEvent.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuClear := systray.AddMenuItem("Clear Board", "Wipe the drawing board")
	menuRelearn := systray.AddMenuItem("Relearn Background", "Capture a new empty background")
	menuViewer := systray.AddMenuItem("Open Viewer...", "Open the live viewer in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit HandMade")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuClear.ClickedCh:
				t.call(func() func() { return t.onClear })
			case <-menuRelearn.ClickedCh:
				t.call(func() func() { return t.onRelearn })
			case <-menuViewer.ClickedCh:
				t.call(func() func() { return t.onViewer })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Drawing"
	}
	return "○ Paused"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Outside the lock: the callback may call back into the tray.
	if callback != nil {
		callback(enabled)
	}
}

// call runs the callback returned by get, read under the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetLastEvent shows the last board event and its tip count in the menu.
func (t *Tray) SetLastEvent(event string, tips int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastEvent == nil {
		return
	}
	if event == "" {
		t.menuLastEvent.SetTitle("Last: none")
		return
	}
	t.menuLastEvent.SetTitle(fmt.Sprintf("Last: %s (%d tips)", event, tips))
}

// IsEnabled reports whether drawing is switched on.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// OpenURL opens url in the default browser.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
