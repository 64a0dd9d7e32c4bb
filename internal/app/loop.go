package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/display"
	"github.com/ayusman/handsign/internal/game"
	"github.com/ayusman/handsign/internal/speech"
	"github.com/ayusman/handsign/internal/store"
)

// RunGame plays rounds against the bot until Esc is pressed or ctx is done.
// Space locks in the current round and starts the next one.
func (a *App) RunGame(ctx context.Context) error {
	cfg := a.config.Session
	if cfg.Bot == nil {
		cfg.Bot = game.NewRandomBot(nil)
	}
	a.session = game.NewSession(cfg)

	return a.run(ctx, func(ctx context.Context) {
		if _, err := a.LockIn(ctx); err != nil {
			a.logger.Error("failed to record round", zap.Error(err))
		}
	})
}

// RunCounter counts fingers without an opponent. Space prints the throw
// the current count maps to.
func (a *App) RunCounter(ctx context.Context) error {
	a.session = game.NewSession(game.SessionConfig{
		Mapping: a.config.Session.Mapping,
		Window:  a.config.Session.Window,
	})

	return a.run(ctx, func(context.Context) {
		a.printf("you played: %s", a.session.Player())
	})
}

// run is the frame loop shared by the game and the counter. A failed frame
// read ends the loop with that error.
func (a *App) run(ctx context.Context, onSpace func(context.Context)) error {
	if err := a.camera.Open(); err != nil {
		return err
	}
	defer a.camera.Close()

	a.logger.Info("frame loop started", zap.Bool("flip", a.config.Flip))

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("frame loop stopped")
			return nil
		default:
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			return err
		}

		quit := a.handleFrame(ctx, frame, onSpace)
		frame.Close()
		if quit {
			a.logger.Info("frame loop ended by user")
			return nil
		}
	}
}

func (a *App) handleFrame(ctx context.Context, frame *gocv.Mat, onSpace func(context.Context)) bool {
	if a.config.Flip {
		capture.Mirror(frame)
	}

	snap, hands, err := a.Step(frame, a.now())
	if err != nil {
		a.logger.Warn("hand detection failed", zap.Error(err))
	}

	if len(hands) > 0 {
		display.DrawHand(frame, &hands[0])
	}
	display.DrawStatus(frame, a.statusLines(snap)...)

	if a.config.Publisher != nil {
		a.config.Publisher.PublishFrame(frame)
	}

	if a.display == nil {
		return false
	}
	a.display.Show(frame)

	switch a.display.PollKey() {
	case display.KeyEsc:
		return true
	case display.KeySpace:
		onSpace(ctx)
	}
	return false
}

// Step detects hands in one frame and advances the session. While paused
// the frame is not analyzed. A detection error leaves the session unchanged.
func (a *App) Step(frame *gocv.Mat, at time.Time) (game.Snapshot, []detector.HandLandmarks, error) {
	if a.Paused() {
		snap := a.session.Snapshot(at)
		a.record(snap)
		return snap, nil, nil
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		return a.session.Snapshot(at), nil, fmt.Errorf("detect hands: %w", err)
	}

	snap := a.session.Observe(hands, at)
	if snap.Changed {
		a.logger.Info("throw changed",
			zap.Int("count", snap.StableCount),
			zap.String("throw", snap.Player.String()),
			zap.String("outcome", string(snap.Outcome)))
	}
	a.record(snap)

	return snap, hands, nil
}

// LockIn records the current round, announces it and starts the next one.
func (a *App) LockIn(ctx context.Context) (*store.Round, error) {
	snap := a.session.Snapshot(a.now())
	round := &store.Round{
		Number:      snap.Round,
		Mapping:     string(a.session.Mapping()),
		FingerCount: snap.StableCount,
		Player:      string(snap.Player),
		Bot:         string(snap.Bot),
		Outcome:     string(snap.Outcome),
		CreatedAt:   snap.At,
	}

	var err error
	if a.config.Store != nil {
		err = a.config.Store.Rounds().Create(round)
	}

	a.printf("round %d: you played %s, bot played %s: %s",
		round.Number, snap.Player, snap.Bot, snap.Outcome.Label())
	a.logger.Info("round locked in",
		zap.Int("round", round.Number),
		zap.String("player", round.Player),
		zap.String("bot", round.Bot),
		zap.String("outcome", round.Outcome))

	a.mu.Lock()
	a.lastRound = round
	a.mu.Unlock()

	if a.config.Publisher != nil {
		a.config.Publisher.PublishRound(round)
	}
	a.announce(ctx, announcement(snap))

	a.session.NewRound()
	a.record(a.session.Snapshot(a.now()))

	return round, err
}

// record stores snap as the latest state and publishes it when it differs
// from the previous one.
func (a *App) record(snap game.Snapshot) {
	a.mu.Lock()
	changed := !sameState(a.last, snap)
	a.last = snap
	a.mu.Unlock()

	if changed && a.config.Publisher != nil {
		a.config.Publisher.PublishState(snap)
	}
}

func (a *App) announce(ctx context.Context, text string) {
	if a.config.Speaker == nil {
		return
	}

	a.speaking.Add(1)
	go func() {
		defer a.speaking.Done()
		if _, err := a.config.Speaker.Speak(ctx, speech.Text(text)); err != nil {
			a.logger.Warn("announcement failed", zap.Error(err))
		}
	}()
}

func announcement(snap game.Snapshot) string {
	if snap.Player == game.None {
		return fmt.Sprintf("No throw seen. I played %s.", snap.Bot)
	}
	return fmt.Sprintf("You played %s. I played %s. %s.", snap.Player, snap.Bot, snap.Outcome.Label())
}

func (a *App) statusLines(snap game.Snapshot) []string {
	count := "-"
	if snap.Hand && snap.Count >= 0 {
		count = strconv.Itoa(snap.Count)
	}

	lines := []string{
		"fingers: " + count,
		"you: " + snap.Player.String(),
	}
	if snap.Bot != game.None {
		lines = append(lines,
			"bot: "+snap.Bot.String(),
			snap.Outcome.Label(),
			fmt.Sprintf("round %d  [space] play  [esc] quit", snap.Round))
	}
	if a.Paused() {
		lines = append(lines, "paused")
	}
	return lines
}

func sameState(a, b game.Snapshot) bool {
	return a.Round == b.Round &&
		a.Hand == b.Hand &&
		a.Count == b.Count &&
		a.StableCount == b.StableCount &&
		a.Pending == b.Pending &&
		a.Player == b.Player &&
		a.Bot == b.Bot &&
		a.Outcome == b.Outcome
}
