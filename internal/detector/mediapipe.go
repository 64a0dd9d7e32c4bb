package detector

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// HandsScript is the helper that runs the MediaPipe hand landmarker.
const HandsScript = "hands_service.py"

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
type MediaPipeDetector struct {
	config  Config
	service *Service
	mu      sync.Mutex
	start   time.Time
	lastTS  int64
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, logger *zap.Logger) (*MediaPipeDetector, error) {
	svc, err := NewService(HandsScript, helperArgs(config), logger)
	if err != nil {
		return nil, err
	}

	return &MediaPipeDetector{
		config:  config,
		service: svc,
		start:   time.Now(),
	}, nil
}

func helperArgs(config Config) []string {
	args := []string{
		"--max-hands", strconv.Itoa(config.MaxHands),
		"--min-detection", strconv.FormatFloat(config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(config.MinTrackingConf, 'f', 2, 64),
	}
	if config.ModelPath != "" {
		args = append(args, "--model", config.ModelPath)
	}
	return args
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	ts := time.Since(d.start).Milliseconds()
	if ts <= d.lastTS {
		ts = d.lastTS + 1
	}
	d.lastTS = ts
	d.mu.Unlock()

	var response struct {
		Hands []JSONHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := d.service.Exchange(frame, ts, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, &HelperError{Message: response.Error}
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		result = append(result, h.HandLandmarks())
		if d.config.MaxHands > 0 && len(result) == d.config.MaxHands {
			break
		}
	}

	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	return d.service.Close()
}

// HelperError is an error the helper reported for a single frame.
type HelperError struct {
	Message string
}

func (e *HelperError) Error() string {
	return "hand detector: " + e.Message
}

// JSONHand is the wire representation of a hand produced by the helper scripts.
type JSONHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// HandLandmarks converts the wire form to HandLandmarks, ignoring extra points.
func (h JSONHand) HandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = h.Points[i]
	}

	return lm
}
