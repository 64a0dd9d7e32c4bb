package recognizer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func thumbUp() Result {
	return Result{Gestures: [][]Category{{
		{Name: "Open_Palm", Score: 0.1},
		{Name: "Thumb_Up", Score: 0.9},
	}}}
}

func newFrame(t *testing.T) gocv.Mat {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("live_stream")
	require.NoError(t, err)
	assert.Equal(t, ModeLiveStream, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeImage, m)

	_, err = ParseMode("video")
	assert.Error(t, err)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultModelPath, o.ModelPath)
	assert.Equal(t, ModeImage, o.Mode)
	assert.Equal(t, DefaultQueueSize, o.QueueSize)
	assert.Equal(t, DefaultMaxHands, o.MaxHands)
}

func TestResult_Top(t *testing.T) {
	top, ok := thumbUp().Top()
	require.True(t, ok)
	assert.Equal(t, "Thumb_Up", top.Name)

	_, ok = Result{}.Top()
	assert.False(t, ok)

	_, ok = Result{Gestures: [][]Category{{}}}.Top()
	assert.False(t, ok)
}

func TestRecognize_ImageMode(t *testing.T) {
	frame := newFrame(t)
	engine := NewMockEngine()
	engine.SetResult(thumbUp())
	r := New(engine, Options{Mode: ModeImage}, nil)
	defer r.Close()

	res, err := r.Recognize(&frame)
	require.NoError(t, err)
	top, _ := res.Top()
	assert.Equal(t, "Thumb_Up", top.Name)

	_, err = r.Recognize(&frame)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, engine.Timestamps())
}

func TestRecognize_WrongMode(t *testing.T) {
	live := New(NewMockEngine(), Options{Mode: ModeLiveStream}, nil)
	defer live.Close()

	_, err := live.Recognize(nil)
	assert.ErrorIs(t, err, ErrWrongMode)
	_, err = live.RecognizeFile("x.jpg")
	assert.ErrorIs(t, err, ErrWrongMode)

	image := New(NewMockEngine(), Options{Mode: ModeImage}, nil)
	defer image.Close()

	assert.ErrorIs(t, image.Start(context.Background()), ErrWrongMode)
	assert.ErrorIs(t, image.Submit(context.Background(), nil, 1), ErrWrongMode)
}

func TestRecognizeFile(t *testing.T) {
	frame := newFrame(t)
	path := filepath.Join(t.TempDir(), "hand.jpg")
	require.True(t, gocv.IMWrite(path, frame))

	engine := NewMockEngine()
	engine.SetResult(thumbUp())
	r := New(engine, Options{}, nil)
	defer r.Close()

	res, err := r.RecognizeFile(path)
	require.NoError(t, err)
	assert.Len(t, res.Gestures, 1)

	_, err = r.RecognizeFile(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestLiveStream_ResultsInOrder(t *testing.T) {
	frame := newFrame(t)
	engine := NewMockEngine()
	engine.SetResult(thumbUp())
	r := New(engine, Options{Mode: ModeLiveStream, QueueSize: 2}, nil)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	const n = 10
	go func() {
		for i := int64(1); i <= n; i++ {
			if err := r.Submit(ctx, &frame, i*33); err != nil {
				return
			}
		}
	}()

	var got []int64
	for len(got) < n {
		select {
		case res := <-r.Results():
			require.NoError(t, res.Err)
			got = append(got, res.TimestampMs)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d results", len(got))
		}
	}

	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
	}
	assert.Equal(t, int64(33), got[0])
	assert.Equal(t, int64(n*33), got[n-1])
}

func TestLiveStream_RejectsNonMonotonicTimestamps(t *testing.T) {
	frame := newFrame(t)
	r := New(NewMockEngine(), Options{Mode: ModeLiveStream}, nil)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))

	require.NoError(t, r.Submit(ctx, &frame, 100))
	assert.ErrorIs(t, r.Submit(ctx, &frame, 100), ErrTimestampNotMonotonic)
	assert.ErrorIs(t, r.Submit(ctx, &frame, 50), ErrTimestampNotMonotonic)
	assert.NoError(t, r.Submit(ctx, &frame, 101))
}

func TestLiveStream_SubmitBeforeStart(t *testing.T) {
	frame := newFrame(t)
	r := New(NewMockEngine(), Options{Mode: ModeLiveStream}, nil)
	defer r.Close()

	assert.ErrorIs(t, r.Submit(context.Background(), &frame, 1), ErrNotStarted)
}

func TestLiveStream_EngineErrorsAreDelivered(t *testing.T) {
	frame := newFrame(t)
	engine := NewMockEngine()
	engine.SetError(errors.New("model failed"))
	r := New(engine, Options{Mode: ModeLiveStream}, nil)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Submit(ctx, &frame, 7))

	select {
	case res := <-r.Results():
		assert.EqualError(t, res.Err, "model failed")
		assert.Equal(t, int64(7), res.TimestampMs)
	case <-time.After(5 * time.Second):
		t.Fatal("no result")
	}
}

func TestLiveStream_Close(t *testing.T) {
	frame := newFrame(t)
	engine := NewMockEngine()
	r := New(engine, Options{Mode: ModeLiveStream}, nil)

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	require.NoError(t, r.Submit(ctx, &frame, 1))

	require.NoError(t, r.Close())
	assert.True(t, engine.Closed())
	assert.NoError(t, r.Close(), "second close is a no-op")

	for range r.Results() {
	}
	assert.ErrorIs(t, r.Submit(ctx, &frame, 2), ErrClosed)
	assert.ErrorIs(t, r.Start(ctx), ErrClosed)
}

func TestLiveStream_ContextCancelStopsWorker(t *testing.T) {
	frame := newFrame(t)
	r := New(NewMockEngine(), Options{Mode: ModeLiveStream}, nil)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	select {
	case _, ok := <-waitClosed(r.Results()):
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("results channel not closed")
	}

	assert.ErrorIs(t, r.Submit(context.Background(), &frame, 1), ErrClosed)
}

func TestClose_WithoutStart(t *testing.T) {
	engine := NewMockEngine()
	r := New(engine, Options{Mode: ModeLiveStream}, nil)

	require.NoError(t, r.Close())
	_, ok := <-r.Results()
	assert.False(t, ok)
	assert.True(t, engine.Closed())
}

// waitClosed drains ch and reports on the returned channel once it closes.
func waitClosed(ch <-chan Result) <-chan Result {
	out := make(chan Result)
	go func() {
		for range ch {
		}
		close(out)
	}()
	return out
}
