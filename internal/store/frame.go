package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Frame is the detection summary of one processed frame.
type Frame struct {
	ID         int64
	SessionID  string
	Index      int
	Tips       int
	PalmX      int
	PalmY      int
	PalmRadius float64
	Event      string
	CreatedAt  time.Time
}

// Stroke is a segment drawn on the board, in board coordinates.
type Stroke struct {
	ID         int64
	SessionID  string
	FrameIndex int
	X1, Y1     int
	X2, Y2     int
}

// Erase is a disc wiped from the board, in board coordinates.
type Erase struct {
	ID         int64
	SessionID  string
	FrameIndex int
	X, Y       int
	Radius     float64
}

// FrameRecord bundles a frame with the board change it caused.
type FrameRecord struct {
	Frame  Frame
	Stroke *Stroke
	Erase  *Erase
}

// RecordFrame stores a frame, its stroke or erase, and bumps the session
// frame count in a single transaction.
func (s *Store) RecordFrame(rec FrameRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin frame record: %w", err)
	}
	defer tx.Rollback()

	f := &rec.Frame
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}

	if _, err := tx.Exec(
		`INSERT INTO frames (session_id, frame_index, tips, palm_x, palm_y, palm_radius, event, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.SessionID, f.Index, f.Tips, f.PalmX, f.PalmY, f.PalmRadius, f.Event, f.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}

	if rec.Stroke != nil {
		st := rec.Stroke
		if _, err := tx.Exec(
			`INSERT INTO strokes (session_id, frame_index, x1, y1, x2, y2) VALUES (?, ?, ?, ?, ?, ?)`,
			f.SessionID, f.Index, st.X1, st.Y1, st.X2, st.Y2,
		); err != nil {
			return fmt.Errorf("insert stroke: %w", err)
		}
	}

	if rec.Erase != nil {
		e := rec.Erase
		if _, err := tx.Exec(
			`INSERT INTO erases (session_id, frame_index, x, y, radius) VALUES (?, ?, ?, ?, ?)`,
			f.SessionID, f.Index, e.X, e.Y, e.Radius,
		); err != nil {
			return fmt.Errorf("insert erase: %w", err)
		}
	}

	result, err := tx.Exec(`UPDATE sessions SET frames = frames + 1 WHERE id = ?`, f.SessionID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if err := affectedOne(result); err != nil {
		return err
	}

	return tx.Commit()
}

// FrameRepository reads frames.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// ListBySession returns the frames of a session in capture order.
func (r *FrameRepository) ListBySession(sessionID string) ([]*Frame, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, frame_index, tips, palm_x, palm_y, palm_radius, event, created_at
		 FROM frames WHERE session_id = ? ORDER BY frame_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []*Frame
	for rows.Next() {
		f := &Frame{}
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Index, &f.Tips, &f.PalmX, &f.PalmY, &f.PalmRadius, &f.Event, &f.CreatedAt); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frames, rows.Err()
}

// StrokeRepository reads strokes.
type StrokeRepository struct {
	db *sql.DB
}

// Strokes returns the stroke repository for this store.
func (s *Store) Strokes() *StrokeRepository {
	return &StrokeRepository{db: s.db}
}

// ListBySession returns the strokes of a session in drawing order.
func (r *StrokeRepository) ListBySession(sessionID string) ([]*Stroke, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, frame_index, x1, y1, x2, y2
		 FROM strokes WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var strokes []*Stroke
	for rows.Next() {
		st := &Stroke{}
		if err := rows.Scan(&st.ID, &st.SessionID, &st.FrameIndex, &st.X1, &st.Y1, &st.X2, &st.Y2); err != nil {
			return nil, err
		}
		strokes = append(strokes, st)
	}

	return strokes, rows.Err()
}

// EraseRepository reads erases.
type EraseRepository struct {
	db *sql.DB
}

// Erases returns the erase repository for this store.
func (s *Store) Erases() *EraseRepository {
	return &EraseRepository{db: s.db}
}

// ListBySession returns the erases of a session in order.
func (r *EraseRepository) ListBySession(sessionID string) ([]*Erase, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, frame_index, x, y, radius
		 FROM erases WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var erases []*Erase
	for rows.Next() {
		e := &Erase{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.FrameIndex, &e.X, &e.Y, &e.Radius); err != nil {
			return nil, err
		}
		erases = append(erases, e)
	}

	return erases, rows.Err()
}
