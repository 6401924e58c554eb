package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	smartheating "github.com/theonefromthesky/smart-heating"
	"github.com/theonefromthesky/smart-heating/internal/engine"
	"github.com/theonefromthesky/smart-heating/internal/logger"
	"github.com/theonefromthesky/smart-heating/internal/repository"
)

// Set-point bounds accepted from the API.
const (
	minSetPointC = 5.0
	maxSetPointC = 30.0
)

var (
	errInvalidMode     = errors.New("invalid mode: must be HEAT or OFF")
	errInvalidSetPoint = fmt.Errorf("invalid set-point: must be between %.0f and %.0f", minSetPointC, maxSetPointC)
)

// ThermostatService owns the single control-core state and serializes all
// invocations through one mutex. Commands go to the boiler fire-and-forget,
// events go to the log, and snapshot-relevant changes are persisted.
type ThermostatService struct {
	mu       sync.Mutex
	state    engine.State
	cfg      engine.Config
	schedule engine.Schedule

	boiler    Boiler
	snapshots repository.SnapshotRepo
	events    repository.EventRepo
	options   func() engine.Config
	log       *logger.Logger
}

func NewThermostatService(boiler Boiler, snapshots repository.SnapshotRepo, events repository.EventRepo, options func() engine.Config, log *logger.Logger) *ThermostatService {
	cfg := engine.DefaultConfig()
	if options != nil {
		cfg = options()
	}
	return &ThermostatService{
		state:     engine.NewState(),
		cfg:       cfg,
		boiler:    boiler,
		snapshots: snapshots,
		events:    events,
		options:   options,
		log:       log,
	}
}

// Restore loads the persisted snapshot into the control state. Called once
// at start-up before the loops run. A missing snapshot keeps the defaults.
func (s *ThermostatService) Restore(ctx context.Context) error {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap.ID == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Mode = engine.Mode(snap.Mode)
	s.state.TargetTemp = snap.TargetTempC
	s.state.HeatUpRate = snap.HeatUpRate
	s.state.HeatLossRate = snap.HeatLossRate
	s.state.Overshoot = snap.OvershootC
	s.state.OutsideRefTemp = snap.OutsideRefC
	s.state.Normalize()
	return nil
}

// Resync adopts the relay state reported by the retained MQTT message so a
// restart does not fight a boiler that is already burning. The heat-cycle
// start temperature is unknown after a restart, so the cycle is marked
// unlearnable with a NaN start temperature.
func (s *ThermostatService) Resync(now time.Time, boilerOn, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !known {
		return
	}
	s.state.BoilerActive = boilerOn
	if boilerOn {
		s.state.HeatCycleStart = now
		s.state.HeatCycleStartTemp = math.NaN()
	}
}

// HandleTemperature feeds an indoor sensor sample through the control loop.
func (s *ThermostatService) HandleTemperature(ctx context.Context, tempC float64) error {
	return s.invoke(ctx, engine.Input{Kind: engine.InputSample, Temp: tempC})
}

// HandleOutdoorTemperature feeds an outdoor sensor sample through the loop.
func (s *ThermostatService) HandleOutdoorTemperature(ctx context.Context, tempC float64) error {
	return s.invoke(ctx, engine.Input{Kind: engine.InputOutdoorSample, Temp: tempC})
}

// HandleSchedule updates the cached occupancy schedule and re-evaluates.
func (s *ThermostatService) HandleSchedule(ctx context.Context, upd ScheduleUpdate) error {
	state := engine.ScheduleUnknown
	switch strings.ToLower(strings.TrimSpace(upd.State)) {
	case "on":
		state = engine.ScheduleOn
	case "off":
		state = engine.ScheduleOff
	default:
		return fmt.Errorf("invalid schedule state %q", upd.State)
	}

	s.mu.Lock()
	s.schedule = engine.Schedule{State: state, NextOn: upd.NextOn.UTC()}
	s.mu.Unlock()

	return s.invoke(ctx, engine.Input{Kind: engine.InputScheduleSignal})
}

// Tick re-evaluates the control decision against the wall clock. Drives the
// watchdog and the preheat window even when no sensor messages arrive.
func (s *ThermostatService) Tick(ctx context.Context) error {
	return s.invoke(ctx, engine.Input{Kind: engine.InputTick})
}

// SetTargetTemperature applies a manual set-point, entering manual override.
func (s *ThermostatService) SetTargetTemperature(ctx context.Context, tempC float64) error {
	if tempC < minSetPointC || tempC > maxSetPointC {
		return errInvalidSetPoint
	}
	return s.invoke(ctx, engine.Input{Kind: engine.InputSetTarget, Temp: tempC})
}

// SetMode switches between HEAT and OFF.
func (s *ThermostatService) SetMode(ctx context.Context, mode string) error {
	m := engine.Mode(strings.ToUpper(strings.TrimSpace(mode)))
	if m != engine.ModeHeat && m != engine.ModeOff {
		return errInvalidMode
	}
	return s.invoke(ctx, engine.Input{Kind: engine.InputSetMode, Mode: m})
}

// ReloadOptions re-reads the control tunables and re-evaluates once so a
// changed hysteresis or comfort temperature takes effect immediately.
func (s *ThermostatService) ReloadOptions(ctx context.Context) error {
	if s.options == nil {
		return nil
	}
	cfg := s.options()

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.log.Infow("control options reloaded",
		"hysteresis", cfg.Hysteresis,
		"comfort_c", cfg.ComfortTemp,
		"setback_c", cfg.SetbackTemp,
		"preheat", cfg.PreheatEnabled,
	)
	return s.invoke(ctx, engine.Input{Kind: engine.InputOptionsReload})
}

// invoke stamps the input with the current time and runs one control-loop
// pass. Exposed to tests via advanceAt for deterministic clocks.
func (s *ThermostatService) invoke(ctx context.Context, in engine.Input) error {
	return s.advanceAt(ctx, time.Now().UTC(), in)
}

func (s *ThermostatService) advanceAt(ctx context.Context, now time.Time, in engine.Input) error {
	s.mu.Lock()
	in.Now = now
	in.Schedule = s.schedule

	prev := s.state
	next, cmds, evs := engine.Advance(s.state, s.cfg, in)
	s.state = next
	s.mu.Unlock()

	s.dispatch(cmds)
	s.record(ctx, now, evs)

	if snapshotChanged(prev, next) {
		if err := s.snapshots.Save(ctx, snapshotOf(next, now)); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	return nil
}

// dispatch forwards actuator commands. A failed command is logged and
// dropped; the next invocation re-derives the desired state and retries.
func (s *ThermostatService) dispatch(cmds []engine.Command) {
	for _, cmd := range cmds {
		var err error
		switch cmd {
		case engine.CmdTurnOn:
			err = s.boiler.TurnOn()
		case engine.CmdTurnOff:
			err = s.boiler.TurnOff()
		}
		if err != nil {
			s.log.Errorw("boiler command failed", "command", cmd.String(), "error", err)
		}
	}
}

// record logs engine events and appends them to the persistent event log.
func (s *ThermostatService) record(ctx context.Context, now time.Time, evs []engine.Event) {
	for _, ev := range evs {
		s.log.Infow(ev.Description, "type", ev.Type)
		var meta any
		if len(ev.Fields) > 0 {
			meta = ev.Fields
		}
		if err := s.events.Append(ctx, smartheating.ThermostatEvent{
			OccurredAt:  now,
			Type:        ev.Type,
			Description: ev.Description,
			Metadata:    meta,
		}); err != nil {
			s.log.Errorw("append event failed", "type", ev.Type, "error", err)
		}
	}
}

// Status reports the externally visible zone state.
func (s *ThermostatService) Status(now time.Time) smartheating.ThermostatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state

	action := smartheating.ActionOff
	if st.Mode == engine.ModeHeat {
		if st.BoilerActive {
			action = smartheating.ActionHeating
		} else {
			action = smartheating.ActionIdle
		}
	}

	preset := smartheating.PresetNone
	if st.PreheatActive {
		preset = smartheating.PresetPreheat
	}

	var current *float64
	if st.CurrentTempOK {
		v := st.CurrentTemp
		current = &v
	}

	return smartheating.ThermostatStatus{
		Mode:          string(st.Mode),
		Action:        action,
		Preset:        preset,
		CurrentTempC:  current,
		TargetTempC:   st.TargetTemp,
		BoilerActive:  st.BoilerActive,
		ScheduleState: s.schedule.State.String(),
		UpdatedAt:     now,
	}
}

// Diagnostics reports the learned model, control flags and the next-fire
// projection. Read-only; the projection never touches the preheat latch.
func (s *ThermostatService) Diagnostics(now time.Time) smartheating.Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state

	var outdoor *float64
	if st.OutdoorTempOK {
		v := st.OutdoorTemp
		outdoor = &v
	}

	d := smartheating.Diagnostics{
		HeatUpRate:     st.HeatUpRate,
		HeatLossRate:   st.HeatLossRate,
		OvershootC:     st.Overshoot,
		OutsideRefC:    st.OutsideRefTemp,
		OutdoorTempC:   outdoor,
		ManualOverride: st.ManualOverride,
		PreheatLatched: st.PreheatLatch,
	}
	if at, ok := engine.NextFire(st, s.cfg, s.schedule, now); ok {
		d.NextFireAt = &at
	}
	return d
}

// snapshotChanged reports whether a persisted field differs between two
// control states.
func snapshotChanged(a, b engine.State) bool {
	return a.Mode != b.Mode ||
		a.TargetTemp != b.TargetTemp ||
		a.HeatUpRate != b.HeatUpRate ||
		a.HeatLossRate != b.HeatLossRate ||
		a.Overshoot != b.Overshoot ||
		a.OutsideRefTemp != b.OutsideRefTemp
}

func snapshotOf(st engine.State, now time.Time) smartheating.Snapshot {
	return smartheating.Snapshot{
		ID:           1,
		Mode:         string(st.Mode),
		TargetTempC:  st.TargetTemp,
		HeatUpRate:   st.HeatUpRate,
		HeatLossRate: st.HeatLossRate,
		OvershootC:   st.Overshoot,
		OutsideRefC:  st.OutsideRefTemp,
		UpdatedAt:    now,
	}
}
