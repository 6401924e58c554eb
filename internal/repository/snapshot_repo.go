package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	smartheating "github.com/theonefromthesky/smart-heating"
)

type SnapshotSQLite struct {
	db *sql.DB
}

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite {
	return &SnapshotSQLite{db: db}
}

const (
	snapshotRowID = 1

	insertOrUpdateSnapshotSQL = `
		INSERT INTO thermostat_snapshot (id, mode, target_c, heat_up_rate, heat_loss_rate, overshoot_c, outside_ref_c, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			target_c=excluded.target_c,
			heat_up_rate=excluded.heat_up_rate,
			heat_loss_rate=excluded.heat_loss_rate,
			overshoot_c=excluded.overshoot_c,
			outside_ref_c=excluded.outside_ref_c,
			updated_at=excluded.updated_at
	`

	selectSnapshotSQL = `
		SELECT id, mode, target_c, heat_up_rate, heat_loss_rate, overshoot_c, outside_ref_c, updated_at
		FROM thermostat_snapshot WHERE id=?
	`
)

// Save updates or inserts the thermostat_snapshot row (id always 1).
func (r *SnapshotSQLite) Save(ctx context.Context, s smartheating.Snapshot) error {
	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := s.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateSnapshotSQL,
		snapshotRowID,
		s.Mode,
		s.TargetTempC,
		s.HeatUpRate,
		s.HeatLossRate,
		s.OvershootC,
		s.OutsideRefC,
		tsUTC,
	)
	return err
}

// Load fetches the single thermostat_snapshot row (id=1). A missing row
// yields a zero snapshot (ID==0), not an error.
func (r *SnapshotSQLite) Load(ctx context.Context) (smartheating.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, selectSnapshotSQL, snapshotRowID)

	var s smartheating.Snapshot
	if err := row.Scan(
		&s.ID,
		&s.Mode,
		&s.TargetTempC,
		&s.HeatUpRate,
		&s.HeatLossRate,
		&s.OvershootC,
		&s.OutsideRefC,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return smartheating.Snapshot{}, nil // no snapshot yet
		}
		return smartheating.Snapshot{}, err
	}

	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
