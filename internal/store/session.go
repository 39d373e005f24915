package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is one run of the frame loop against a source.
type Session struct {
	ID        string
	Source    string
	Width     int
	Height    int
	Frames    int
	StartedAt time.Time

	// EndedAt is zero while the session is running.
	EndedAt time.Time
}

// SessionRepository provides access to sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session. StartedAt defaults to now.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, source, width, height, frames, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Source, sess.Width, sess.Height, sess.Frames, sess.StartedAt,
	)
	return err
}

// End marks a session finished.
func (r *SessionRepository) End(id string, endedAt time.Time) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, endedAt, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

const sessionColumns = `id, source, width, height, frames, started_at, ended_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime

	if err := row.Scan(&sess.ID, &sess.Source, &sess.Width, &sess.Height, &sess.Frames, &sess.StartedAt, &ended); err != nil {
		return nil, err
	}
	if ended.Valid {
		sess.EndedAt = ended.Time
	}
	return sess, nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and, through the cascade, its frames, strokes
// and erases.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}
