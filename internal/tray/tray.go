// Package tray provides the system tray menu for the airsketch board.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray shows the feed status and current mode, and offers board shortcuts.
type Tray struct {
	onClear func()
	onOpen  func()
	onQuit  func()
	status  string
	mode    string
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuMode   *systray.MenuItem
}

// New creates a Tray that reports a disconnected feed until told otherwise.
func New() *Tray {
	return &Tray{
		status: "Disconnected",
		mode:   "Mode: NAVIGATION",
	}
}

// OnClear sets the callback for the Clear Canvas item.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnOpen sets the callback for the Open Board item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the Quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("airsketch")
	systray.SetTooltip("airsketch air drawing board")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Tracking feed connection")
	t.menuStatus.Disable()
	t.menuMode = systray.AddMenuItem(t.mode, "Current interaction mode")
	t.menuMode.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuClear := systray.AddMenuItem("Clear Canvas", "Remove every stroke")
	menuOpen := systray.AddMenuItem("Open Board...", "Open the board in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit airsketch")

	go func() {
		for {
			select {
			case <-menuClear.ClickedCh:
				t.call(func() func() { return t.onClear })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// call runs the callback picked under the lock, outside of it.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetStatus updates the feed status line, such as "Tracking Active".
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(status)
	}
}

// SetMode updates the mode line, such as "Mode: DRAWING".
func (t *Tray) SetMode(label string) {
	if label == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = label
	if t.menuMode != nil {
		t.menuMode.SetTitle(label)
	}
}

// Status returns the last status shown.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Mode returns the last mode label shown.
func (t *Tray) Mode() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}
