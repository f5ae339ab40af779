package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Palette swatches in display order
		`CREATE TABLE IF NOT EXISTS palette_entries (
			id TEXT PRIMARY KEY,
			color TEXT NOT NULL,
			box_left REAL NOT NULL,
			box_top REAL NOT NULL,
			box_right REAL NOT NULL,
			box_bottom REAL NOT NULL,
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_palette_entries_position ON palette_entries(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
