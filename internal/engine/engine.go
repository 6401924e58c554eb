// Package engine implements the self-tuning thermostat control core as a
// pure state machine: every external trigger is funnelled through Advance,
// which resolves the effective target, drives the boiler through hysteresis
// and the runaway watchdog, and updates the learned heating model.
//
// The package has no clock, no I/O and no locks. The caller owns the single
// State instance, serializes calls, and dispatches the returned commands.
package engine

import "fmt"

// Advance runs one control-loop invocation. It applies the input to the
// state, sequences target resolution and boiler control, and returns the
// new state together with actuator commands and diagnostic events.
func Advance(st State, cfg Config, in Input) (State, []Command, []Event) {
	var (
		cmds []Command
		evs  []Event
	)

	st, evs = applyInput(st, cfg, in, evs)

	// Off-cycle tracker timeout is checked on every invocation that carries
	// a usable temperature, so a long idle stretch still finalizes learning.
	if cfg.LearningEnabled && !st.BoilerActive && st.LossTracking && st.CurrentTempOK {
		if in.Now.Sub(st.PeakTempAt) >= cfg.MaxLossTrackingTime {
			st, evs = finalizeOffCycle(st, cfg, in.Now, evs)
		}
	}

	// Safety-first: missing data or an OFF command force the boiler off,
	// bypassing the overshoot test.
	if st.Mode == ModeOff || !st.CurrentTempOK {
		if st.BoilerActive {
			reason := "mode off"
			if st.Mode != ModeOff {
				reason = "no valid temperature"
			}
			st, cmds, evs = turnOff(st, cfg, in.Now, EventSafetyOff, reason, st.CurrentTempOK, cmds, evs)
		}
		return st, cmds, evs
	}

	st, evs = resolveTarget(st, cfg, in, evs)
	st, cmds, evs = controlBoiler(st, cfg, in.Now, cmds, evs)

	return st, cmds, evs
}

// applyInput folds the trigger payload into the state before control runs.
func applyInput(st State, cfg Config, in Input, evs []Event) (State, []Event) {
	switch in.Kind {
	case InputSample:
		st.CurrentTemp = in.Temp
		st.CurrentTempOK = true
		if cfg.LearningEnabled && !st.BoilerActive && st.LossTracking && in.Temp > st.PeakTemp {
			st.PeakTemp = in.Temp
			st.PeakTempAt = in.Now
		}

	case InputOutdoorSample:
		st.OutdoorTemp = in.Temp
		st.OutdoorTempOK = true

	case InputSetTarget:
		st.TargetTemp = in.Temp
		st.ManualOverride = true
		st.PreheatLatch = false
		st.PreheatActive = false
		evs = append(evs, Event{
			Type:        EventManualOverride,
			Description: fmt.Sprintf("manual set-point %.1f°C", in.Temp),
			Fields:      map[string]any{"target_c": in.Temp},
		})

	case InputSetMode:
		if in.Mode != st.Mode {
			evs = append(evs, Event{
				Type:        EventModeChange,
				Description: fmt.Sprintf("mode changed to %s", in.Mode),
				Fields:      map[string]any{"from": string(st.Mode), "to": string(in.Mode)},
			})
			st.Mode = in.Mode
		}
	}
	return st, evs
}
