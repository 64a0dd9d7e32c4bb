// Package recognizer classifies hand gestures in still images and in a live
// camera stream.
//
// In live-stream mode frames are submitted with strictly increasing
// timestamps and results are delivered on a channel in submission order.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/detector"
)

// Mode selects how frames are fed to the recognizer.
type Mode string

const (
	ModeImage      Mode = "image"
	ModeLiveStream Mode = "live_stream"
)

// Defaults.
const (
	DefaultModelPath = "models/gesture_recognizer.task"
	DefaultQueueSize = 8
	DefaultMaxHands  = 1
)

var (
	ErrWrongMode             = errors.New("operation not available in this running mode")
	ErrTimestampNotMonotonic = errors.New("timestamp must be greater than the previous one")
	ErrNotStarted            = errors.New("recognizer not started")
	ErrClosed                = errors.New("recognizer closed")
)

// ParseMode parses "image" or "live_stream".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeImage, ModeLiveStream:
		return Mode(s), nil
	case "":
		return ModeImage, nil
	}
	return "", fmt.Errorf("unknown running mode %q", s)
}

// Options configures a Recognizer.
type Options struct {
	ModelPath string
	Mode      Mode
	// QueueSize bounds the frames waiting for the live-stream worker.
	QueueSize int
	MaxHands  int
}

func (o Options) withDefaults() Options {
	if o.ModelPath == "" {
		o.ModelPath = DefaultModelPath
	}
	if o.Mode == "" {
		o.Mode = ModeImage
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	if o.MaxHands <= 0 {
		o.MaxHands = DefaultMaxHands
	}
	return o
}

// Category is one gesture label with its score.
type Category struct {
	Name  string  `json:"category_name"`
	Score float64 `json:"score"`
}

// Result is the recognizer output for one frame. Gestures holds the ranked
// categories of each detected hand.
type Result struct {
	TimestampMs int64                    `json:"timestamp_ms"`
	Gestures    [][]Category             `json:"gestures"`
	Hands       []detector.HandLandmarks `json:"hands,omitempty"`
	Err         error                    `json:"-"`
}

// Top returns the highest scoring category of the first hand.
func (r Result) Top() (Category, bool) {
	if len(r.Gestures) == 0 || len(r.Gestures[0]) == 0 {
		return Category{}, false
	}
	cats := append([]Category(nil), r.Gestures[0]...)
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Score > cats[j].Score })
	return cats[0], true
}

type request struct {
	frame       gocv.Mat
	timestampMs int64
}

// Recognizer wraps an Engine with running-mode checks.
type Recognizer struct {
	opts   Options
	engine Engine
	logger *zap.Logger

	// submitMu orders timestamp checks and queue sends.
	submitMu sync.Mutex
	lastTS   int64
	imageTS  int64
	started  bool

	requests  chan request
	results   chan Result
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a recognizer over engine.
func New(engine Engine, opts Options, logger *zap.Logger) *Recognizer {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recognizer{
		opts:     opts,
		engine:   engine,
		logger:   logger,
		lastTS:   -1,
		requests: make(chan request, opts.QueueSize),
		results:  make(chan Result, opts.QueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Mode returns the running mode.
func (r *Recognizer) Mode() Mode {
	return r.opts.Mode
}

// Recognize classifies a single frame. Image mode only.
func (r *Recognizer) Recognize(frame *gocv.Mat) (Result, error) {
	if r.opts.Mode != ModeImage {
		return Result{}, ErrWrongMode
	}
	if r.isClosed() {
		return Result{}, ErrClosed
	}

	r.submitMu.Lock()
	r.imageTS++
	ts := r.imageTS
	r.submitMu.Unlock()

	return r.engine.Recognize(frame, ts)
}

// RecognizeFile loads an image from disk and classifies it. Image mode only.
func (r *Recognizer) RecognizeFile(path string) (Result, error) {
	if r.opts.Mode != ModeImage {
		return Result{}, ErrWrongMode
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return Result{}, fmt.Errorf("read image %s", path)
	}

	return r.Recognize(&img)
}

// Start launches the live-stream worker. It stops when ctx is done or
// Close is called.
func (r *Recognizer) Start(ctx context.Context) error {
	if r.opts.Mode != ModeLiveStream {
		return ErrWrongMode
	}

	r.submitMu.Lock()
	defer r.submitMu.Unlock()

	if r.isClosed() {
		return ErrClosed
	}
	if r.started {
		return nil
	}
	r.started = true

	go r.run(ctx)
	return nil
}

// Submit queues a copy of frame for recognition. Timestamps must strictly
// increase across calls. Submit blocks while the queue is full.
func (r *Recognizer) Submit(ctx context.Context, frame *gocv.Mat, timestampMs int64) error {
	if r.opts.Mode != ModeLiveStream {
		return ErrWrongMode
	}
	if frame == nil || frame.Empty() {
		return errors.New("empty frame")
	}

	r.submitMu.Lock()
	defer r.submitMu.Unlock()

	if r.isClosed() {
		return ErrClosed
	}
	if !r.started {
		return ErrNotStarted
	}
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	if timestampMs <= r.lastTS {
		return fmt.Errorf("%w: %d after %d", ErrTimestampNotMonotonic, timestampMs, r.lastTS)
	}

	req := request{frame: frame.Clone(), timestampMs: timestampMs}

	select {
	case r.requests <- req:
		r.lastTS = timestampMs
		return nil
	case <-ctx.Done():
		req.frame.Close()
		return ctx.Err()
	case <-r.stop:
		req.frame.Close()
		return ErrClosed
	case <-r.done:
		req.frame.Close()
		return ErrClosed
	}
}

// Results delivers live-stream results in submission order. The channel is
// closed when the worker stops.
func (r *Recognizer) Results() <-chan Result {
	return r.results
}

// Close stops the worker, releases queued frames and closes the engine.
func (r *Recognizer) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stop)

		r.submitMu.Lock()
		started := r.started
		r.submitMu.Unlock()

		if started {
			<-r.done
		} else {
			close(r.done)
			close(r.results)
		}

		r.submitMu.Lock()
		r.drain()
		r.submitMu.Unlock()

		err = r.engine.Close()
	})
	return err
}

func (r *Recognizer) isClosed() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

func (r *Recognizer) run(ctx context.Context) {
	defer close(r.results)
	defer close(r.done)
	defer r.drain()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case req := <-r.requests:
			result, err := r.engine.Recognize(&req.frame, req.timestampMs)
			req.frame.Close()
			if err != nil {
				r.logger.Warn("gesture recognition failed",
					zap.Int64("timestamp_ms", req.timestampMs),
					zap.Error(err))
				result = Result{TimestampMs: req.timestampMs, Err: err}
			}

			select {
			case r.results <- result:
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			}
		}
	}
}

func (r *Recognizer) drain() {
	for {
		select {
		case req := <-r.requests:
			req.frame.Close()
		default:
			return
		}
	}
}
