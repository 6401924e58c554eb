package engine

import (
	"fmt"
	"time"
)

// controlBoiler runs the two-state hysteresis machine.
//
//	IDLE  -> ACTIVE  when temp <= target - hysteresis
//	ACTIVE -> IDLE   when temp >= target - overshoot, or the watchdog fires
//
// Transitions strictly alternate; re-entering the current state is a no-op.
func controlBoiler(st State, cfg Config, now time.Time, cmds []Command, evs []Event) (State, []Command, []Event) {
	if st.BoilerActive {
		overshoot := 0.0
		if cfg.OvershootEnabled {
			overshoot = st.Overshoot
		}
		cutoff := st.TargetTemp - overshoot

		switch {
		case st.CurrentTemp >= cutoff:
			return turnOff(st, cfg, now, EventBoilerOff,
				fmt.Sprintf("target reached (%.1f >= %.1f)", st.CurrentTemp, cutoff),
				true, cmds, evs)

		case now.Sub(st.HeatCycleStart) > cfg.MaxOnTime:
			// Runaway protection. The cycle is suspect (stuck sensor, lost
			// heat), so its sample must not feed the learned rate.
			return turnOff(st, cfg, now, EventWatchdogOff,
				fmt.Sprintf("max on-time %s exceeded", cfg.MaxOnTime),
				false, cmds, evs)
		}
		return st, cmds, evs
	}

	if st.CurrentTemp <= st.TargetTemp-cfg.Hysteresis {
		return turnOn(st, cfg, now, cmds, evs)
	}
	return st, cmds, evs
}

func turnOn(st State, cfg Config, now time.Time, cmds []Command, evs []Event) (State, []Command, []Event) {
	// A pending cooling-phase measurement is finalized first so the learning
	// window is not lost when the boiler re-fires early.
	if cfg.LearningEnabled && st.LossTracking {
		st, evs = finalizeOffCycle(st, cfg, now, evs)
	}

	st.BoilerActive = true
	st.HeatCycleStart = now
	st.HeatCycleStartTemp = st.CurrentTemp
	if !st.CurrentTempOK {
		// Resync edge: never learn from a cycle whose start temp is unknown.
		st.HeatCycleStartTemp = unknownTemp
	}

	cmds = append(cmds, CmdTurnOn)
	evs = append(evs, Event{
		Type:        EventBoilerOn,
		Description: fmt.Sprintf("demand detected (%.1f <= %.1f), boiler on", st.CurrentTemp, st.TargetTemp-cfg.Hysteresis),
		Fields:      map[string]any{"current_c": st.CurrentTemp, "target_c": st.TargetTemp},
	})
	return st, cmds, evs
}

// turnOff commands the actuator off, optionally feeds the heat-up-rate
// estimator with the finished cycle, and arms the off-cycle tracker.
func turnOff(st State, cfg Config, now time.Time, eventType, reason string, learn bool, cmds []Command, evs []Event) (State, []Command, []Event) {
	st.BoilerActive = false
	cmds = append(cmds, CmdTurnOff)
	evs = append(evs, Event{
		Type:        eventType,
		Description: "boiler off: " + reason,
		Fields:      map[string]any{"current_c": st.CurrentTemp, "target_c": st.TargetTemp},
	})

	if cfg.LearningEnabled && st.CurrentTempOK {
		if learn {
			st, evs = learnHeatUpRate(st, cfg, now, evs)
		}
		st.CoolCycleStart = now
		st.CoolCycleStartTemp = st.CurrentTemp
		st.PeakTemp = st.CurrentTemp
		st.PeakTempAt = now
		st.LossTracking = true
	}
	return st, cmds, evs
}
