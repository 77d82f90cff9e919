package texture

// EnsureSchema creates the texels table if it doesn't already exist. A
// caller runs it right after Open so a fresh sqlite file is immediately
// usable; a preexisting atlas database (postgres,
// mysql, sqlserver) is expected to already have the table, so failures
// here are non-fatal to the caller's judgment, not swallowed.
func (s *Store) EnsureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS texels (
		tex_ref TEXT NOT NULL,
		u INTEGER NOT NULL,
		v INTEGER NOT NULL,
		r REAL NOT NULL,
		g REAL NOT NULL,
		b REAL NOT NULL,
		PRIMARY KEY (tex_ref, u, v)
	)`)
	return err
}

// Put writes a single texel, used by tests and by atlas-import tooling.
func (s *Store) Put(ref string, u, v int, r, g, b float32) error {
	_, err := s.db.Exec(
		`INSERT INTO texels (tex_ref, u, v, r, g, b) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tex_ref, u, v) DO UPDATE SET r = excluded.r, g = excluded.g, b = excluded.b`,
		ref, u, v, r, g, b,
	)
	return err
}
