package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"control_panel/internal/models"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("not found")

// Authorization stores operator accounts of the security API.
type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// SubjectRepo stores subjects: credential hashes plus power and arm state.
type SubjectRepo interface {
	Create(ctx context.Context, s models.Subject) error
	Get(ctx context.Context, id string) (*models.Subject, error)
	UpdateState(ctx context.Context, id string, powered, armed bool) error
	SetMasterHash(ctx context.Context, id, hash string) error
}

// EventRepo is the append-only audit log.
type EventRepo interface {
	Append(ctx context.Context, e models.SecurityEvent) error
	List(ctx context.Context, from, to time.Time, typ, subjectID string) ([]models.SecurityEvent, error)
}

type Repository struct {
	Subjects SubjectRepo
	Events   EventRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Subjects: NewSubjectSQLite(db),
		Events:   NewEventSQLite(db),
		Auth:     NewUserRepository(db),
	}
}
