package repository

import (
	"context"
	"database/sql"
	"time"

	smartheating "github.com/theonefromthesky/smart-heating"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*smartheating.User, error)
}

// SnapshotRepo persists the single thermostat snapshot, restored at
// start-up and written on every committed state change.
type SnapshotRepo interface {
	Save(ctx context.Context, s smartheating.Snapshot) error
	Load(ctx context.Context) (smartheating.Snapshot, error)
}

type EventRepo interface {
	Append(ctx context.Context, e smartheating.ThermostatEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]smartheating.ThermostatEvent, error)
}

type Repository struct {
	SnapshotRepo SnapshotRepo
	EventRepo    EventRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SnapshotRepo: NewSnapshotSQLite(db),
		EventRepo:    NewEventSQLite(db),
		Auth:         NewUserRepository(db),
	}
}
