// Package tray provides a system tray menu for the game: pause and resume
// detection, the last round and the running score.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/game"
	"github.com/ayusman/handsign/internal/store"
)

// Score is the running tally of the rounds seen by the tray.
type Score struct {
	Player int
	Bot    int
	Draws  int
}

// String formats the score as shown in the menu.
func (s Score) String() string {
	return fmt.Sprintf("You %d : %d Bot (%d draws)", s.Player, s.Bot, s.Draws)
}

// Tray represents the system tray application.
type Tray struct {
	onToggle func(paused bool)
	onOpen   func()
	onQuit   func()
	paused   bool
	last     string
	score    Score
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
	menuScore  *systray.MenuItem
}

// New creates a new Tray with detection running.
func New() *Tray {
	return &Tray{last: "Last: none"}
}

// OnToggle sets the callback called when detection is paused or resumed.
func (t *Tray) OnToggle(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback of the "Open dashboard" item. Without one the
// item is hidden.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("handsign")
	systray.SetTooltip("handsign rock-paper-scissors")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.paused), "Pause or resume hand detection")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(t.last, "Last round")
	t.menuLast.Disable()
	t.menuScore = systray.AddMenuItem(t.score.String(), "Score")
	t.menuScore.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open dashboard...", "Open the dashboard in a browser")
	if t.onOpen == nil {
		menuOpen.Hide()
	}
	systray.AddSeparator()
	t.mu.Unlock()

	menuQuit := systray.AddMenuItem("Quit", "Quit handsign")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(paused))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// PublishRound shows the round and adds it to the score.
func (t *Tray) PublishRound(round *store.Round) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch game.Outcome(round.Outcome) {
	case game.PlayerWins:
		t.score.Player++
	case game.BotWins:
		t.score.Bot++
	case game.Draw:
		t.score.Draws++
	}
	t.last = lastTitle(round)

	if t.menuLast != nil {
		t.menuLast.SetTitle(t.last)
		t.menuScore.SetTitle(t.score.String())
	}
}

// PublishState is a no-op; the tray only tracks finished rounds.
func (t *Tray) PublishState(game.Snapshot) {}

// PublishFrame is a no-op.
func (t *Tray) PublishFrame(*gocv.Mat) {}

// Paused reports whether detection is paused from the menu.
func (t *Tray) Paused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// Score returns the running score.
func (t *Tray) Score() Score {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.score
}

// Last returns the title of the last-round item.
func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func toggleTitle(paused bool) string {
	if paused {
		return "○ Paused"
	}
	return "● Detecting"
}

func lastTitle(round *store.Round) string {
	player := round.Player
	if player == "" {
		player = "nothing"
	}
	return fmt.Sprintf("Last: %s vs %s, %s", player, round.Bot, game.Outcome(round.Outcome).Label())
}
