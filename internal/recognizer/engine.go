package recognizer

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/detector"
)

// GestureScript is the helper that runs the MediaPipe gesture recognizer.
const GestureScript = "gesture_service.py"

// Engine classifies a single frame.
type Engine interface {
	Recognize(frame *gocv.Mat, timestampMs int64) (Result, error)
	Close() error
}

// MediaPipeEngine runs the gesture recognizer model in a helper process.
type MediaPipeEngine struct {
	service *detector.Service
}

// NewMediaPipeEngine prepares the helper for the model in opts. The process
// starts on the first frame.
func NewMediaPipeEngine(opts Options, logger *zap.Logger) (*MediaPipeEngine, error) {
	opts = opts.withDefaults()
	args := []string{
		"--model", opts.ModelPath,
		"--mode", string(opts.Mode),
		"--max-hands", strconv.Itoa(opts.MaxHands),
	}

	svc, err := detector.NewService(GestureScript, args, logger)
	if err != nil {
		return nil, err
	}
	return &MediaPipeEngine{service: svc}, nil
}

// Recognize sends the frame to the helper.
func (e *MediaPipeEngine) Recognize(frame *gocv.Mat, timestampMs int64) (Result, error) {
	var response struct {
		Gestures [][]Category        `json:"gestures"`
		Hands    []detector.JSONHand `json:"hands"`
		Error    string              `json:"error"`
	}
	if err := e.service.Exchange(frame, timestampMs, &response); err != nil {
		return Result{}, err
	}
	if response.Error != "" {
		return Result{}, &EngineError{Message: response.Error}
	}

	result := Result{
		TimestampMs: timestampMs,
		Gestures:    response.Gestures,
		Hands:       make([]detector.HandLandmarks, 0, len(response.Hands)),
	}
	for _, h := range response.Hands {
		result.Hands = append(result.Hands, h.HandLandmarks())
	}
	return result, nil
}

// Close stops the helper.
func (e *MediaPipeEngine) Close() error {
	return e.service.Close()
}

// EngineError is an error reported by the helper for a single frame.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return "recognizer engine: " + e.Message
}

// MockEngine is an Engine for tests.
type MockEngine struct {
	mu         sync.Mutex
	result     Result
	err        error
	delay      time.Duration
	timestamps []int64
	closed     bool
}

// NewMockEngine creates a mock engine that returns empty results.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// SetResult sets the result returned for every frame. The timestamp is
// replaced by the frame's.
func (m *MockEngine) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetError makes every call fail with err.
func (m *MockEngine) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes every call take at least d.
func (m *MockEngine) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Recognize records the timestamp and returns the configured result.
func (m *MockEngine) Recognize(frame *gocv.Mat, timestampMs int64) (Result, error) {
	m.mu.Lock()
	m.timestamps = append(m.timestamps, timestampMs)
	result, err, delay := m.result, m.err, m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return Result{}, err
	}
	result.TimestampMs = timestampMs
	return result, nil
}

// Timestamps returns the timestamps seen so far, in call order.
func (m *MockEngine) Timestamps() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.timestamps))
	copy(out, m.timestamps)
	return out
}

// Close marks the engine closed.
func (m *MockEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockEngine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
