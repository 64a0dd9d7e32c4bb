// Package display shows annotated camera frames in a window and reports key presses.
package display

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/detector"
)

// Key codes returned by PollKey.
const (
	KeyNone  = -1
	KeyEsc   = 27
	KeySpace = 32
)

// DefaultTitle is the window title used by the CLI.
const DefaultTitle = "handsign"

// Display shows frames and reports the last key pressed.
type Display interface {
	Show(frame *gocv.Mat)
	// PollKey waits briefly for a key press and returns its code, or KeyNone.
	PollKey() int
	Close() error
}

// Window is a Display backed by a native window.
type Window struct {
	win   *gocv.Window
	delay int
}

// NewWindow opens a window. delayMs is how long PollKey waits for input.
func NewWindow(title string, delayMs int) *Window {
	if delayMs <= 0 {
		delayMs = 1
	}
	return &Window{win: gocv.NewWindow(title), delay: delayMs}
}

// Show draws the frame in the window.
func (w *Window) Show(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	w.win.IMShow(*frame)
}

// PollKey waits for a key press.
func (w *Window) PollKey() int {
	key := w.win.WaitKey(w.delay)
	if key < 0 {
		return KeyNone
	}
	return key & 0xff
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// MockDisplay is a Display for tests. Keys queued with PressKeys are returned
// one per PollKey call.
type MockDisplay struct {
	mu     sync.Mutex
	keys   []int
	shown  int
	closed bool
}

// NewMockDisplay creates a mock display with queued keys.
func NewMockDisplay(keys ...int) *MockDisplay {
	return &MockDisplay{keys: keys}
}

// PressKeys queues key presses.
func (m *MockDisplay) PressKeys(keys ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, keys...)
}

// Show counts the frame.
func (m *MockDisplay) Show(frame *gocv.Mat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown++
}

// PollKey pops the next queued key.
func (m *MockDisplay) PollKey() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.keys) == 0 {
		return KeyNone
	}
	key := m.keys[0]
	m.keys = m.keys[1:]
	return key
}

// Close marks the display closed.
func (m *MockDisplay) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Shown returns how many frames were shown.
func (m *MockDisplay) Shown() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shown
}

// Closed reports whether Close was called.
func (m *MockDisplay) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var (
	landmarkColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	connectionColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	textColor       = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// DrawHand draws the landmarks and skeleton of a hand onto the frame.
func DrawHand(frame *gocv.Mat, hand *detector.HandLandmarks) {
	if frame == nil || frame.Empty() || hand == nil {
		return
	}
	width, height := frame.Cols(), frame.Rows()

	for _, c := range detector.Connections {
		x1, y1 := hand.Pixel(c[0], width, height)
		x2, y2 := hand.Pixel(c[1], width, height)
		gocv.Line(frame, image.Pt(x1, y1), image.Pt(x2, y2), connectionColor, 2)
	}
	for i := range hand.Points {
		x, y := hand.Pixel(i, width, height)
		gocv.Circle(frame, image.Pt(x, y), 4, landmarkColor, -1)
	}
}

// DrawStatus writes lines of text in the top-left corner of the frame.
func DrawStatus(frame *gocv.Mat, lines ...string) {
	if frame == nil || frame.Empty() {
		return
	}
	for i, line := range lines {
		gocv.PutText(frame, line, image.Pt(10, 30+i*30), gocv.FontHersheySimplex, 0.8, textColor, 2)
	}
}
