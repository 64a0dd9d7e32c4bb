package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Rounds table - one row per locked-in round against the bot
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			number INTEGER NOT NULL,
			mapping TEXT NOT NULL,
			finger_count INTEGER NOT NULL,
			player TEXT NOT NULL DEFAULT '',
			bot TEXT NOT NULL,
			outcome TEXT NOT NULL CHECK(outcome IN ('undetermined', 'player', 'bot', 'draw')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recognitions table - top gesture per recognized image or stream frame
		`CREATE TABLE IF NOT EXISTS recognitions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL CHECK(source IN ('image', 'live_stream')),
			path TEXT NOT NULL DEFAULT '',
			timestamp_ms INTEGER NOT NULL,
			gesture TEXT NOT NULL DEFAULT '',
			score REAL NOT NULL DEFAULT 0,
			hands INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rounds_created_at ON rounds(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recognitions_created_at ON recognitions(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
