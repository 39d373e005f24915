package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Binding events.
const (
	EventErase       = "erase"
	EventStrokeStart = "stroke_start"
	EventStrokeEnd   = "stroke_end"
)

// ValidEvent reports whether name is a bindable board event.
func ValidEvent(name string) bool {
	switch name {
	case EventErase, EventStrokeStart, EventStrokeEnd:
		return true
	}
	return false
}

// Binding maps a board event to a hook action.
type Binding struct {
	ID         string
	Event      string
	HookName   string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, event, hook_name, action_name, config, enabled, created_at`

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var config string
	var enabled int

	if err := row.Scan(&b.ID, &b.Event, &b.HookName, &b.ActionName, &config, &enabled, &b.CreatedAt); err != nil {
		return nil, err
	}

	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

func configOrEmpty(config json.RawMessage) string {
	if len(config) == 0 {
		return "{}"
	}
	return string(config)
}

// Create inserts a new binding into the database.
func (r *BindingRepository) Create(b *Binding) error {
	b.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Event, b.HookName, b.ActionName, configOrEmpty(b.Config), b.Enabled, b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// List retrieves all bindings.
func (r *BindingRepository) List() ([]*Binding, error) {
	return r.query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY created_at DESC`)
}

// ListEnabledByEvent retrieves the enabled bindings for an event.
func (r *BindingRepository) ListEnabledByEvent(event string) ([]*Binding, error) {
	return r.query(`SELECT `+bindingColumns+` FROM bindings WHERE event = ? AND enabled = 1 ORDER BY created_at`, event)
}

func (r *BindingRepository) query(q string, args ...any) ([]*Binding, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Update updates an existing binding in the database.
func (r *BindingRepository) Update(b *Binding) error {
	enabled := 0
	if b.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE bindings SET event = ?, hook_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		b.Event, b.HookName, b.ActionName, configOrEmpty(b.Config), enabled, b.ID,
	)
	if err != nil {
		return err
	}

	return affectedOne(result)
}

// Delete removes a binding from the database by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return affectedOne(result)
}
