package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	smartheating "github.com/theonefromthesky/smart-heating"
	"github.com/theonefromthesky/smart-heating/internal/engine"
	"github.com/theonefromthesky/smart-heating/internal/logger"
)

type fakeBoiler struct {
	commands []string
	onErr    error
	offErr   error
}

func (f *fakeBoiler) TurnOn() error {
	f.commands = append(f.commands, "on")
	return f.onErr
}

func (f *fakeBoiler) TurnOff() error {
	f.commands = append(f.commands, "off")
	return f.offErr
}

type fakeSnapshotRepo struct {
	loadResp smartheating.Snapshot
	loadErr  error
	saveErr  error
	saved    []smartheating.Snapshot
}

func (f *fakeSnapshotRepo) Load(ctx context.Context) (smartheating.Snapshot, error) {
	return f.loadResp, f.loadErr
}

func (f *fakeSnapshotRepo) Save(ctx context.Context, s smartheating.Snapshot) error {
	f.saved = append(f.saved, s)
	return f.saveErr
}

type fakeEventRepo struct {
	appendErr error
	events    []smartheating.ThermostatEvent
	listErr   error
}

func (f *fakeEventRepo) Append(ctx context.Context, e smartheating.ThermostatEvent) error {
	f.events = append(f.events, e)
	return f.appendErr
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]smartheating.ThermostatEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []smartheating.ThermostatEvent
	for _, e := range f.events {
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && e.OccurredAt.After(to) {
			continue
		}
		if typ != "" && e.Type != typ {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type thermoFixture struct {
	svc    *ThermostatService
	boiler *fakeBoiler
	snaps  *fakeSnapshotRepo
	events *fakeEventRepo
}

func newThermoFixture() *thermoFixture {
	boiler := &fakeBoiler{}
	snaps := &fakeSnapshotRepo{}
	events := &fakeEventRepo{}
	svc := NewThermostatService(boiler, snaps, events, nil, logger.Get(logger.ErrorLevel))
	return &thermoFixture{svc: svc, boiler: boiler, snaps: snaps, events: events}
}

func hasEventType(events []smartheating.ThermostatEvent, typ string) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

var baseTime = time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC)

func TestThermostat_SampleBelowBandFiresBoiler(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat

	// Setback 16 with hysteresis 0.5; 15.4 is below the band.
	if err := fx.svc.advanceAt(context.Background(), baseTime, engine.Input{Kind: engine.InputSample, Temp: 15.4}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(fx.boiler.commands) != 1 || fx.boiler.commands[0] != "on" {
		t.Fatalf("expected single turn-on command, got %v", fx.boiler.commands)
	}
	if !hasEventType(fx.events.events, engine.EventBoilerOn) {
		t.Fatalf("expected %s event, got %+v", engine.EventBoilerOn, fx.events.events)
	}
}

func TestThermostat_SampleInsideBandStaysIdle(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat

	if err := fx.svc.advanceAt(context.Background(), baseTime, engine.Input{Kind: engine.InputSample, Temp: 15.8}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(fx.boiler.commands) != 0 {
		t.Fatalf("expected no commands inside the band, got %v", fx.boiler.commands)
	}
}

func TestThermostat_WatchdogForcesOffOnTick(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat

	ctx := context.Background()
	if err := fx.svc.advanceAt(ctx, baseTime, engine.Input{Kind: engine.InputSample, Temp: 15.0}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !fx.svc.state.BoilerActive {
		t.Fatalf("boiler should be burning")
	}

	// Still cold one hour later; the watchdog trips before the target does.
	if err := fx.svc.advanceAt(ctx, baseTime.Add(61*time.Minute), engine.Input{Kind: engine.InputTick}); err != nil {
		t.Fatalf("tick: %v", err)
	}

	if fx.svc.state.BoilerActive {
		t.Fatalf("watchdog should have forced the boiler off")
	}
	last := fx.boiler.commands[len(fx.boiler.commands)-1]
	if last != "off" {
		t.Fatalf("expected trailing off command, got %v", fx.boiler.commands)
	}
	if !hasEventType(fx.events.events, engine.EventWatchdogOff) {
		t.Fatalf("expected %s event, got %+v", engine.EventWatchdogOff, fx.events.events)
	}
}

func TestThermostat_SnapshotSavedOnTargetChange(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat

	// First sample resolves the target from 0 to setback, which is a
	// persisted field, so a snapshot write must follow.
	if err := fx.svc.advanceAt(context.Background(), baseTime, engine.Input{Kind: engine.InputSample, Temp: 18.0}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(fx.snaps.saved) == 0 {
		t.Fatalf("expected a snapshot save")
	}
	got := fx.snaps.saved[len(fx.snaps.saved)-1]
	if got.TargetTempC != 16.0 || got.Mode != smartheating.ModeHeat {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestThermostat_NoSnapshotWhenNothingPersistedChanges(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat

	ctx := context.Background()
	if err := fx.svc.advanceAt(ctx, baseTime, engine.Input{Kind: engine.InputSample, Temp: 18.0}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	writes := len(fx.snaps.saved)

	// Identical sample a minute later changes no persisted field.
	if err := fx.svc.advanceAt(ctx, baseTime.Add(time.Minute), engine.Input{Kind: engine.InputSample, Temp: 18.0}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(fx.snaps.saved) != writes {
		t.Fatalf("expected no further snapshot writes, got %d -> %d", writes, len(fx.snaps.saved))
	}
}

func TestThermostat_ManualOverrideClearedByScheduleFlip(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat
	fx.svc.state.CurrentTemp = 19.0
	fx.svc.state.CurrentTempOK = true

	ctx := context.Background()
	if err := fx.svc.HandleSchedule(ctx, ScheduleUpdate{State: "off"}); err != nil {
		t.Fatalf("schedule off: %v", err)
	}
	if err := fx.svc.SetTargetTemperature(ctx, 22.0); err != nil {
		t.Fatalf("set target: %v", err)
	}
	if !fx.svc.state.ManualOverride || fx.svc.state.TargetTemp != 22.0 {
		t.Fatalf("manual override not in effect: %+v", fx.svc.state)
	}

	if err := fx.svc.HandleSchedule(ctx, ScheduleUpdate{State: "on"}); err != nil {
		t.Fatalf("schedule on: %v", err)
	}

	if fx.svc.state.ManualOverride {
		t.Fatalf("schedule flip should release manual override")
	}
	if fx.svc.state.TargetTemp != 20.0 {
		t.Fatalf("expected comfort target after schedule on, got %.1f", fx.svc.state.TargetTemp)
	}
	if !hasEventType(fx.events.events, engine.EventScheduleChange) {
		t.Fatalf("expected %s event", engine.EventScheduleChange)
	}
}

func TestThermostat_SetTargetValidation(t *testing.T) {
	fx := newThermoFixture()

	for _, bad := range []float64{4.9, 30.1, -3, 100} {
		if err := fx.svc.SetTargetTemperature(context.Background(), bad); err == nil {
			t.Fatalf("expected rejection of set-point %.1f", bad)
		}
	}
	if err := fx.svc.SetTargetTemperature(context.Background(), 21.0); err != nil {
		t.Fatalf("valid set-point rejected: %v", err)
	}
}

func TestThermostat_SetModeValidation(t *testing.T) {
	fx := newThermoFixture()

	if err := fx.svc.SetMode(context.Background(), "COOL"); !errors.Is(err, errInvalidMode) {
		t.Fatalf("expected errInvalidMode, got %v", err)
	}
	if err := fx.svc.SetMode(context.Background(), " heat "); err != nil {
		t.Fatalf("expected trimmed lowercase mode to pass, got %v", err)
	}
	if fx.svc.state.Mode != engine.ModeHeat {
		t.Fatalf("mode not applied: %v", fx.svc.state.Mode)
	}
}

func TestThermostat_OffModeForcesBoilerOff(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat

	ctx := context.Background()
	if err := fx.svc.advanceAt(ctx, baseTime, engine.Input{Kind: engine.InputSample, Temp: 15.0}); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !fx.svc.state.BoilerActive {
		t.Fatalf("boiler should be burning")
	}

	if err := fx.svc.SetMode(ctx, "OFF"); err != nil {
		t.Fatalf("set mode: %v", err)
	}

	if fx.svc.state.BoilerActive {
		t.Fatalf("OFF mode must force the boiler off")
	}
	if !hasEventType(fx.events.events, engine.EventSafetyOff) {
		t.Fatalf("expected %s event", engine.EventSafetyOff)
	}
}

func TestThermostat_RestoreAppliesSnapshotAndClamps(t *testing.T) {
	fx := newThermoFixture()
	fx.snaps.loadResp = smartheating.Snapshot{
		ID:           1,
		Mode:         smartheating.ModeHeat,
		TargetTempC:  21.0,
		HeatUpRate:   5.0, // corrupt, above the legal range
		HeatLossRate: 0.02,
		OvershootC:   0.3,
		OutsideRefC:  8.0,
	}

	if err := fx.svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if fx.svc.state.Mode != engine.ModeHeat || fx.svc.state.TargetTemp != 21.0 {
		t.Fatalf("snapshot not applied: %+v", fx.svc.state)
	}
	if fx.svc.state.HeatUpRate != 1.0 {
		t.Fatalf("corrupt heat-up rate not clamped: %v", fx.svc.state.HeatUpRate)
	}
}

func TestThermostat_RestoreMissingSnapshotKeepsDefaults(t *testing.T) {
	fx := newThermoFixture()

	if err := fx.svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if fx.svc.state.HeatUpRate != engine.DefaultHeatUpRate {
		t.Fatalf("defaults should survive an empty store: %+v", fx.svc.state)
	}
}

func TestThermostat_ResyncAdoptsRelayState(t *testing.T) {
	fx := newThermoFixture()

	fx.svc.Resync(baseTime, true, true)

	if !fx.svc.state.BoilerActive {
		t.Fatalf("resync should adopt the burning relay")
	}
	if !math.IsNaN(fx.svc.state.HeatCycleStartTemp) {
		t.Fatalf("resynced cycle must be unlearnable, got start temp %v", fx.svc.state.HeatCycleStartTemp)
	}

	// Unknown retained state leaves everything untouched.
	fx2 := newThermoFixture()
	fx2.svc.Resync(baseTime, true, false)
	if fx2.svc.state.BoilerActive {
		t.Fatalf("unknown relay state must not flip the boiler")
	}
}

func TestThermostat_BoilerErrorIsNotFatal(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat
	fx.boiler.onErr = errors.New("relay unreachable")

	if err := fx.svc.advanceAt(context.Background(), baseTime, engine.Input{Kind: engine.InputSample, Temp: 15.0}); err != nil {
		t.Fatalf("a failed dispatch must not surface: %v", err)
	}
}

func TestThermostat_StatusAndDiagnostics(t *testing.T) {
	fx := newThermoFixture()
	fx.svc.state.Mode = engine.ModeHeat

	ctx := context.Background()
	if err := fx.svc.HandleOutdoorTemperature(ctx, 4.5); err != nil {
		t.Fatalf("outdoor: %v", err)
	}
	if err := fx.svc.advanceAt(ctx, baseTime, engine.Input{Kind: engine.InputSample, Temp: 15.0}); err != nil {
		t.Fatalf("advance: %v", err)
	}

	status := fx.svc.Status(baseTime)
	if status.Action != smartheating.ActionHeating || !status.BoilerActive {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.CurrentTempC == nil || *status.CurrentTempC != 15.0 {
		t.Fatalf("current temp missing from status: %+v", status)
	}

	diag := fx.svc.Diagnostics(baseTime)
	if diag.OutdoorTempC == nil || *diag.OutdoorTempC != 4.5 {
		t.Fatalf("outdoor temp missing from diagnostics: %+v", diag)
	}
	if diag.NextFireAt == nil || !diag.NextFireAt.Equal(baseTime) {
		t.Fatalf("active boiler should project next fire now: %+v", diag.NextFireAt)
	}
}

func TestThermostat_HandleScheduleRejectsUnknownState(t *testing.T) {
	fx := newThermoFixture()
	if err := fx.svc.HandleSchedule(context.Background(), ScheduleUpdate{State: "maybe"}); err == nil {
		t.Fatalf("expected rejection of unknown schedule state")
	}
}
