package app

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/display"
	"github.com/ayusman/handsign/internal/recognizer"
	"github.com/ayusman/handsign/internal/store"
)

// RunLive streams camera frames into a live-stream recognizer until Esc is
// pressed, ctx is done or a frame read fails. Results are printed, and
// stored when a store is configured, in the order they arrive. A nil or
// disabled gate submits every frame.
func (a *App) RunLive(ctx context.Context, rec *recognizer.Recognizer, gate *capture.MotionGate) error {
	if rec.Mode() != recognizer.ModeLiveStream {
		return recognizer.ErrWrongMode
	}
	if err := a.camera.Open(); err != nil {
		return err
	}
	defer a.camera.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := rec.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for res := range rec.Results() {
			a.reportRecognition(res)
		}
		return nil
	})

	g.Go(func() error {
		defer rec.Close()
		return a.streamFrames(gctx, rec, gate)
	})

	return g.Wait()
}

func (a *App) streamFrames(ctx context.Context, rec *recognizer.Recognizer, gate *capture.MotionGate) error {
	start := a.now()
	last := int64(-1)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			return err
		}
		if a.config.Flip {
			capture.Mirror(frame)
		}

		ts := a.now().Sub(start).Milliseconds()
		if ts <= last {
			ts = last + 1
		}

		open := true
		if gate != nil {
			open, _ = gate.Open(frame)
		}
		if open {
			err := rec.Submit(ctx, frame, ts)
			switch {
			case err == nil:
				last = ts
			case errors.Is(err, context.Canceled), errors.Is(err, recognizer.ErrClosed):
				frame.Close()
				return nil
			default:
				frame.Close()
				return err
			}
		}

		if a.config.Publisher != nil {
			a.config.Publisher.PublishFrame(frame)
		}

		quit := false
		if a.display != nil {
			a.display.Show(frame)
			quit = a.display.PollKey() == display.KeyEsc
		}
		frame.Close()

		if quit {
			return nil
		}
	}
}

func (a *App) reportRecognition(res recognizer.Result) {
	if res.Err != nil {
		a.printf("gesture recognition error at %d ms: %v", res.TimestampMs, res.Err)
		return
	}

	top, ok := res.Top()
	if !ok {
		a.logger.Debug("no gesture", zap.Int64("timestamp_ms", res.TimestampMs))
		return
	}
	a.printf("gesture recognition result: %s (%.2f) at %d ms", top.Name, top.Score, res.TimestampMs)

	if a.config.Store == nil {
		return
	}
	rec := &store.Recognition{
		Source:      store.SourceLiveStream,
		TimestampMs: res.TimestampMs,
		Gesture:     top.Name,
		Score:       top.Score,
		Hands:       len(res.Hands),
	}
	if err := a.config.Store.Recognitions().Create(rec); err != nil {
		a.logger.Error("failed to store recognition", zap.Error(err))
	}
}
