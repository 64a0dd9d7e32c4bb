package game

import (
	"time"

	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/gesture"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	Mapping Mapping
	// Bot supplies the opponent. Nil plays without an opponent, which is
	// the finger-count mode.
	Bot    Bot
	Window time.Duration
}

// Session is the per-loop game state. It is owned by a single frame loop
// and is not safe for concurrent use; publish Snapshots instead.
type Session struct {
	mapping Mapping
	bot     Bot
	stab    *gesture.Stabilizer

	round  int
	player Throw
	opp    Throw
	count  int
	hand   bool
}

// Snapshot is a copy of the session state after one frame.
type Snapshot struct {
	Round       int       `json:"round"`
	Hand        bool      `json:"hand"`
	Count       int       `json:"count"`
	StableCount int       `json:"stable_count"`
	Pending     bool      `json:"pending"`
	Player      Throw     `json:"player"`
	Bot         Throw     `json:"bot"`
	Outcome     Outcome   `json:"outcome"`
	Changed     bool      `json:"changed"`
	At          time.Time `json:"at"`
}

// NewSession creates a session and draws the bot's first throw.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Mapping == "" {
		cfg.Mapping = MappingWide
	}
	s := &Session{
		mapping: cfg.Mapping,
		bot:     cfg.Bot,
		stab:    gesture.NewStabilizer(cfg.Window),
		count:   gesture.NoCount,
	}
	s.NewRound()
	return s
}

// Observe advances the session by one frame's detections.
// Frames without a hand leave the count logic untouched.
func (s *Session) Observe(hands []detector.HandLandmarks, at time.Time) Snapshot {
	count, ok := gesture.CountHand(hands)
	s.hand = ok

	changed := false
	if ok {
		s.count = count
		stable, accepted := s.stab.Update(count, at)
		if accepted {
			if t, mapped := s.mapping.Throw(stable); mapped && t != s.player {
				s.player = t
				changed = true
			}
		}
	}

	snap := s.Snapshot(at)
	snap.Changed = changed
	return snap
}

// Snapshot returns the current state.
func (s *Session) Snapshot(at time.Time) Snapshot {
	stable, _ := s.stab.Stable()
	_, pending := s.stab.Pending()
	return Snapshot{
		Round:       s.round,
		Hand:        s.hand,
		Count:       s.count,
		StableCount: stable,
		Pending:     pending,
		Player:      s.player,
		Bot:         s.opp,
		Outcome:     Resolve(s.player, s.opp),
		At:          at,
	}
}

// NewRound clears the player's throw and lets the bot draw again.
func (s *Session) NewRound() {
	s.round++
	s.player = None
	s.stab.Reset()
	s.count = gesture.NoCount
	if s.bot != nil {
		s.opp = s.bot.Draw()
	}
}

// Player returns the player's current throw.
func (s *Session) Player() Throw {
	return s.player
}

// Bot returns the bot's throw for this round.
func (s *Session) Bot() Throw {
	return s.opp
}

// Mapping returns the count to throw mapping in use.
func (s *Session) Mapping() Mapping {
	return s.mapping
}
