package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	smartheating "github.com/theonefromthesky/smart-heating"
	"github.com/theonefromthesky/smart-heating/internal/repository"
)

func TestEventSQLite_Append_FillsIDAndTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := repository.NewEventSQLite(db)

	nonEmptyString := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		return ok && s != ""
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO thermostat_events")).
		WithArgs(
			nonEmptyString, // generated uuid
			nonEmptyString, // generated occurred_at
			"BOILER_ON",
			"demand detected",
			nil, // no metadata
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Append(context.Background(), smartheating.ThermostatEvent{
		Type:        "boiler_on", // normalized to upper case
		Description: "demand detected",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_Append_MarshalsMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := repository.NewEventSQLite(db)

	jsonMeta := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		return ok && s == `{"target_c":21.5}`
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO thermostat_events")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "MANUAL_OVERRIDE", "manual set-point", jsonMeta).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Append(context.Background(), smartheating.ThermostatEvent{
		Type:        "MANUAL_OVERRIDE",
		Description: "manual set-point",
		Metadata:    map[string]any{"target_c": 21.5},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_List_BuildsConditions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := repository.NewEventSQLite(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	occurred := time.Date(2026, 1, 10, 6, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("ev-1", occurred, "LEARNED", "heat-up rate now 0.0900", `{"sample":0.05}`)

	mock.ExpectQuery(regexp.QuoteMeta("occurred_at >= ? AND occurred_at <= ? AND type = ?")).
		WithArgs(from, to, "LEARNED").
		WillReturnRows(rows)

	out, err := repo.List(context.Background(), from, to, " learned ")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 event, got %d", len(out))
	}
	ev := out[0]
	if ev.EventID != "ev-1" || ev.Type != "LEARNED" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	meta, ok := ev.Metadata.(map[string]any)
	if !ok || meta["sample"] != 0.05 {
		t.Fatalf("metadata not decoded: %#v", ev.Metadata)
	}
}

func TestEventSQLite_List_NoFiltersQueriesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	repo := repository.NewEventSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, occurred_at, type, message, meta FROM thermostat_events ORDER BY occurred_at ASC")).
		WillReturnRows(rows)

	out, err := repo.List(context.Background(), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}
