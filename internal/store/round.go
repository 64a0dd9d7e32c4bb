package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps List calls that pass a non-positive limit.
const DefaultListLimit = 50

// Round is one locked-in round of the game.
type Round struct {
	ID          string    `json:"id"`
	Number      int       `json:"number"`
	Mapping     string    `json:"mapping"`
	FingerCount int       `json:"finger_count"`
	Player      string    `json:"player"`
	Bot         string    `json:"bot"`
	Outcome     string    `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarizes all recorded rounds.
type Stats struct {
	Total        int `json:"total"`
	PlayerWins   int `json:"player_wins"`
	BotWins      int `json:"bot_wins"`
	Draws        int `json:"draws"`
	Undetermined int `json:"undetermined"`
}

// RoundRepository provides access to recorded rounds.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

// Create inserts a round. A missing ID is generated.
func (r *RoundRepository) Create(round *Round) error {
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	if round.CreatedAt.IsZero() {
		round.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO rounds (id, number, mapping, finger_count, player, bot, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		round.ID, round.Number, round.Mapping, round.FingerCount,
		round.Player, round.Bot, round.Outcome, round.CreatedAt,
	)
	return err
}

// GetByID retrieves a round by its ID.
func (r *RoundRepository) GetByID(id string) (*Round, error) {
	round := &Round{}
	err := r.db.QueryRow(
		`SELECT id, number, mapping, finger_count, player, bot, outcome, created_at
		 FROM rounds WHERE id = ?`,
		id,
	).Scan(&round.ID, &round.Number, &round.Mapping, &round.FingerCount,
		&round.Player, &round.Bot, &round.Outcome, &round.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return round, nil
}

// List returns the most recent rounds first.
func (r *RoundRepository) List(limit int) ([]*Round, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, number, mapping, finger_count, player, bot, outcome, created_at
		 FROM rounds ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		round := &Round{}
		err := rows.Scan(&round.ID, &round.Number, &round.Mapping, &round.FingerCount,
			&round.Player, &round.Bot, &round.Outcome, &round.CreatedAt)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}

// Stats counts rounds by outcome.
func (r *RoundRepository) Stats() (Stats, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM rounds GROUP BY outcome`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return Stats{}, err
		}

		switch outcome {
		case "player":
			stats.PlayerWins = n
		case "bot":
			stats.BotWins = n
		case "draw":
			stats.Draws = n
		default:
			stats.Undetermined += n
		}
		stats.Total += n
	}

	return stats, rows.Err()
}
