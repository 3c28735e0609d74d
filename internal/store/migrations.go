package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Rules table - user-defined finger-state patterns evaluated after
		// the built-in decision table. Pattern is five characters over
		// thumb/index/middle/ring/pinky: '0', '1', or 'x'.
		`CREATE TABLE IF NOT EXISTS rules (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			pattern TEXT NOT NULL CHECK(length(pattern) = 5),
			position INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		// (extractor strategy, smoothing window, camera device).
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rules_position ON rules(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
