package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Recognition sources.
const (
	SourceImage      = "image"
	SourceLiveStream = "live_stream"
)

// Recognition is the top gesture found in one image or stream frame.
type Recognition struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Path        string    `json:"path,omitempty"`
	TimestampMs int64     `json:"timestamp_ms"`
	Gesture     string    `json:"gesture"`
	Score       float64   `json:"score"`
	Hands       int       `json:"hands"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecognitionRepository provides access to recognizer results.
type RecognitionRepository struct {
	db *sql.DB
}

// Recognitions returns the recognition repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Create inserts a recognition. A missing ID is generated.
func (r *RecognitionRepository) Create(rec *Recognition) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO recognitions (id, source, path, timestamp_ms, gesture, score, hands, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.Path, rec.TimestampMs, rec.Gesture, rec.Score, rec.Hands, rec.CreatedAt,
	)
	return err
}

// List returns the most recent recognitions first.
func (r *RecognitionRepository) List(limit int) ([]*Recognition, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, source, path, timestamp_ms, gesture, score, hands, created_at
		 FROM recognitions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recognition
	for rows.Next() {
		rec := &Recognition{}
		err := rows.Scan(&rec.ID, &rec.Source, &rec.Path, &rec.TimestampMs,
			&rec.Gesture, &rec.Score, &rec.Hands, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}
