package game

import (
	"math/rand/v2"
	"strings"
)

// Bot supplies the opponent's throw for a round.
type Bot interface {
	// Draw picks the throw for a new round.
	Draw() Throw
}

// FixedBot always plays the same throw.
type FixedBot Throw

// Draw returns the fixed throw.
func (b FixedBot) Draw() Throw {
	return Throw(b)
}

// RandomBot picks uniformly among rock, paper and scissors.
type RandomBot struct {
	rng *rand.Rand
}

// NewRandomBot creates a RandomBot. A nil rng uses the global source.
func NewRandomBot(rng *rand.Rand) *RandomBot {
	return &RandomBot{rng: rng}
}

// Draw returns a random throw.
func (b *RandomBot) Draw() Throw {
	if b.rng == nil {
		return Throws[rand.IntN(len(Throws))]
	}
	return Throws[b.rng.IntN(len(Throws))]
}

// ParseBot builds a bot from a config value: "random" or a throw name.
func ParseBot(s string) (Bot, error) {
	if v := strings.ToLower(strings.TrimSpace(s)); v == "" || v == "random" {
		return NewRandomBot(nil), nil
	}
	t, err := ParseThrow(s)
	if err != nil {
		return nil, err
	}
	return FixedBot(t), nil
}
