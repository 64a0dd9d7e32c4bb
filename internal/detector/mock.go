package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Finger order used by HandWithFingers.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// HandWithFingers builds an upright right hand with the given fingers
// extended, indexed Thumb..Pinky. The wrist sits at y=0.8 and the middle
// MCP at y=0.66, so vertical extension must beat 0.07 to register.
func HandWithFingers(extended [5]bool) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	// Thumb: lateral position of the tip decides extension.
	landmarks.Points[ThumbCMC] = Point3D{X: 0.54, Y: 0.76}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.55, Y: 0.72}
	if extended[Thumb] {
		landmarks.Points[ThumbIP] = Point3D{X: 0.46, Y: 0.66}
		landmarks.Points[ThumbTip] = Point3D{X: 0.40, Y: 0.62}
	} else {
		landmarks.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.68}
		landmarks.Points[ThumbTip] = Point3D{X: 0.53, Y: 0.66}
	}

	fingers := []struct {
		finger int
		mcp    int
		x, y   float64
	}{
		{Index, IndexMCP, 0.55, 0.68},
		{Middle, MiddleMCP, 0.50, 0.66},
		{Ring, RingMCP, 0.45, 0.68},
		{Pinky, PinkyMCP, 0.40, 0.70},
	}

	for _, f := range fingers {
		landmarks.Points[f.mcp] = Point3D{X: f.x, Y: f.y}
		if extended[f.finger] {
			// Joints stacked straight up from the knuckle.
			landmarks.Points[f.mcp+1] = Point3D{X: f.x, Y: f.y - 0.10}
			landmarks.Points[f.mcp+2] = Point3D{X: f.x, Y: f.y - 0.18}
			landmarks.Points[f.mcp+3] = Point3D{X: f.x, Y: f.y - 0.25}
		} else {
			// Curled back so the tip rests just below the knuckle.
			landmarks.Points[f.mcp+1] = Point3D{X: f.x, Y: f.y - 0.03, Z: -0.05}
			landmarks.Points[f.mcp+2] = Point3D{X: f.x - 0.02, Y: f.y, Z: -0.04}
			landmarks.Points[f.mcp+3] = Point3D{X: f.x - 0.03, Y: f.y + 0.02, Z: -0.02}
		}
	}

	return landmarks
}

// FistLandmarks returns a closed fist: every finger curled, thumb tucked.
func FistLandmarks() HandLandmarks {
	return HandWithFingers([5]bool{})
}

// OpenHandLandmarks returns an open hand with all five fingers extended.
func OpenHandLandmarks() HandLandmarks {
	return HandWithFingers([5]bool{true, true, true, true, true})
}

// VictoryLandmarks returns a hand with index and middle fingers extended.
func VictoryLandmarks() HandLandmarks {
	return HandWithFingers([5]bool{false, true, true, false, false})
}
