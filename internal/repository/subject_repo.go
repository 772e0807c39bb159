package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"control_panel/internal/models"
)

type SubjectSQLite struct {
	db *sql.DB
}

func NewSubjectSQLite(db *sql.DB) *SubjectSQLite {
	return &SubjectSQLite{db: db}
}

var _ SubjectRepo = (*SubjectSQLite)(nil)

const (
	insertSubjectSQL = `
		INSERT INTO subjects (id, master_hash, guest_hash, powered, armed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	selectSubjectSQL = `
		SELECT id, master_hash, guest_hash, powered, armed, updated_at
		FROM subjects WHERE id = ?
	`

	updateSubjectStateSQL = `UPDATE subjects SET powered = ?, armed = ?, updated_at = ? WHERE id = ?`

	updateMasterHashSQL = `UPDATE subjects SET master_hash = ?, updated_at = ? WHERE id = ?`
)

// nowOr returns t in UTC, or the current UTC time when t is zero.
func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Create inserts a new subject row.
func (r *SubjectSQLite) Create(ctx context.Context, s models.Subject) error {
	_, err := r.db.ExecContext(ctx, insertSubjectSQL,
		s.ID,
		s.MasterHash,
		s.GuestHash,
		s.Powered,
		s.Armed,
		nowOr(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert subject %q: %w", s.ID, err)
	}
	return nil
}

// Get fetches a subject. Returns (nil, nil) if not found.
func (r *SubjectSQLite) Get(ctx context.Context, id string) (*models.Subject, error) {
	var s models.Subject
	err := r.db.QueryRowContext(ctx, selectSubjectSQL, id).Scan(
		&s.ID,
		&s.MasterHash,
		&s.GuestHash,
		&s.Powered,
		&s.Armed,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select subject %q: %w", id, err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// UpdateState persists power and arm flags.
func (r *SubjectSQLite) UpdateState(ctx context.Context, id string, powered, armed bool) error {
	res, err := r.db.ExecContext(ctx, updateSubjectStateSQL, powered, armed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update subject %q state: %w", id, err)
	}
	return expectOneRow(res, id)
}

// SetMasterHash replaces the master credential hash.
func (r *SubjectSQLite) SetMasterHash(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, updateMasterHashSQL, hash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update subject %q master hash: %w", id, err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for subject %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("subject %q: %w", id, ErrNotFound)
	}
	return nil
}
