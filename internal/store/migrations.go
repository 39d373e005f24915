package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the frame loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Frames table - per-frame detection summary
		`CREATE TABLE IF NOT EXISTS frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame_index INTEGER NOT NULL,
			tips INTEGER NOT NULL,
			palm_x INTEGER NOT NULL,
			palm_y INTEGER NOT NULL,
			palm_radius REAL NOT NULL,
			event TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Strokes table - every segment drawn on the board
		`CREATE TABLE IF NOT EXISTS strokes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame_index INTEGER NOT NULL,
			x1 INTEGER NOT NULL,
			y1 INTEGER NOT NULL,
			x2 INTEGER NOT NULL,
			y2 INTEGER NOT NULL
		)`,

		// Erases table - every disc erased by an open hand
		`CREATE TABLE IF NOT EXISTS erases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame_index INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			radius REAL NOT NULL
		)`,

		// Bindings table - hooks to run when board events happen
		`CREATE TABLE IF NOT EXISTS bindings (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL CHECK(event IN ('erase', 'stroke_start', 'stroke_end')),
			hook_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_frames_session_id ON frames(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_strokes_session_id ON strokes(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_erases_session_id ON erases(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bindings_event ON bindings(event)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
