package game

// Outcome is the result of comparing the player's throw with the bot's.
type Outcome string

const (
	Undetermined Outcome = "undetermined"
	PlayerWins   Outcome = "player"
	BotWins      Outcome = "bot"
	Draw         Outcome = "draw"
)

// Resolve compares two throws. Either side missing a throw leaves the
// outcome undetermined; identical throws are a draw.
func Resolve(player, bot Throw) Outcome {
	switch {
	case player == None || bot == None:
		return Undetermined
	case player == bot:
		return Draw
	case player.Beats(bot):
		return PlayerWins
	default:
		return BotWins
	}
}

// Label is the on-screen text for the outcome.
func (o Outcome) Label() string {
	switch o {
	case PlayerWins:
		return "Player wins"
	case BotWins:
		return "Bot wins"
	case Draw:
		return "Draw"
	default:
		return "Undetermined"
	}
}
