// Package app runs the camera loops: rock-paper-scissors against a bot, plain
// finger counting and the live gesture recognizer.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/display"
	"github.com/ayusman/handsign/internal/game"
	"github.com/ayusman/handsign/internal/speech"
	"github.com/ayusman/handsign/internal/store"
)

// Publisher receives loop updates, e.g. to stream them over HTTP.
type Publisher interface {
	PublishState(snap game.Snapshot)
	PublishRound(round *store.Round)
	// PublishFrame receives the annotated frame. It must not retain it.
	PublishFrame(frame *gocv.Mat)
}

// Publishers fans updates out to several publishers in order.
type Publishers []Publisher

func (ps Publishers) PublishState(snap game.Snapshot) {
	for _, p := range ps {
		p.PublishState(snap)
	}
}

func (ps Publishers) PublishRound(round *store.Round) {
	for _, p := range ps {
		p.PublishRound(round)
	}
}

func (ps Publishers) PublishFrame(frame *gocv.Mat) {
	for _, p := range ps {
		p.PublishFrame(frame)
	}
}

// Speaker announces round results.
type Speaker interface {
	Speak(ctx context.Context, in speech.Input, opts ...speech.Option) (*speech.Result, error)
}

// Config holds configuration options for the application.
type Config struct {
	// Camera overrides the device camera opened from CameraID.
	Camera   capture.Camera
	CameraID int
	// Flip mirrors frames before detection.
	Flip bool
	// Detector overrides the MediaPipe detector.
	Detector detector.Detector
	// HandsModel is the hand landmarker model for the MediaPipe detector.
	HandsModel string
	// Display shows frames; nil runs headless.
	Display   display.Display
	Session   game.SessionConfig
	Store     *store.Store
	Publisher Publisher
	Speaker   Speaker
	Logger    *zap.Logger
	// Out receives the user-facing lines; defaults to stdout.
	Out io.Writer
	Now func() time.Time
}

// App owns the camera, the detector and the per-loop game session.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	display  display.Display
	logger   *zap.Logger
	out      io.Writer
	now      func() time.Time

	// session is owned by the running loop.
	session *game.Session

	mu        sync.RWMutex
	paused    bool
	last      game.Snapshot
	lastRound *store.Round

	speaking sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		display:  config.Display,
		logger:   logger,
		out:      config.Out,
		now:      config.Now,
	}
	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	if a.now == nil {
		a.now = time.Now
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		detectorConfig := detector.DefaultConfig()
		detectorConfig.ModelPath = config.HandsModel
		if mp, err := detector.NewMediaPipeDetector(detectorConfig, logger); err == nil {
			a.detector = mp
			logger.Info("using MediaPipe hand detection")
		} else {
			logger.Warn("MediaPipe not available, using mock detector", zap.Error(err))
			a.detector = detector.NewMockDetector()
		}
	}

	a.session = game.NewSession(config.Session)
	a.last = a.session.Snapshot(a.now())
	return a
}

// Pause stops detection. Frames are still read and shown.
func (a *App) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = true
}

// Resume restarts detection.
func (a *App) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = false
}

// Paused reports whether detection is paused.
func (a *App) Paused() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paused
}

// LastSnapshot returns the state after the most recent frame.
func (a *App) LastSnapshot() game.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

// LastRound returns the most recently locked-in round, or nil.
func (a *App) LastRound() *store.Round {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastRound
}

// Session returns the loop's game session.
func (a *App) Session() *game.Session {
	return a.session
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// Close releases the camera, the detector and the display, after pending
// announcements finish.
func (a *App) Close() error {
	a.speaking.Wait()

	var err error
	if a.camera.IsOpen() {
		err = multierr.Append(err, a.camera.Close())
	}
	err = multierr.Append(err, a.detector.Close())
	if a.display != nil {
		err = multierr.Append(err, a.display.Close())
	}
	return err
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}
