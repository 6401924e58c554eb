package engine

import "fmt"

// resolveTarget computes the effective set-point for this invocation.
//
// A schedule transition releases manual override; entering the comfort
// period additionally releases the preheat latch. While manual override
// holds, the user's value persists untouched. Otherwise the target is
// setback, comfort when the schedule is on, or comfort early when the
// preheat scheduler says the window has opened.
func resolveTarget(st State, cfg Config, in Input, evs []Event) (State, []Event) {
	sched := in.Schedule

	if sched.State != ScheduleUnknown && st.LastSchedule != ScheduleUnknown && sched.State != st.LastSchedule {
		evs = append(evs, Event{
			Type:        EventScheduleChange,
			Description: fmt.Sprintf("schedule changed to %s, back to auto", sched.State),
			Fields:      map[string]any{"from": st.LastSchedule.String(), "to": sched.State.String()},
		})
		st.ManualOverride = false
		if sched.State == ScheduleOn {
			st.PreheatLatch = false
		}
	}
	if sched.State != ScheduleUnknown {
		st.LastSchedule = sched.State
	}

	if st.ManualOverride {
		st.PreheatActive = false
		return st, evs
	}

	target := cfg.SetbackTemp
	preheat := false

	switch {
	case st.LastSchedule == ScheduleOn:
		target = cfg.ComfortTemp

	case cfg.PreheatEnabled && st.LastSchedule == ScheduleOff &&
		(st.PreheatLatch || !sched.NextOn.IsZero()):
		if shouldPreheat(st, cfg, sched, in) {
			target = cfg.ComfortTemp
			preheat = true
			if !st.PreheatLatch {
				evs = append(evs, Event{
					Type:        EventPreheatStart,
					Description: "preheat window opened",
					Fields: map[string]any{
						"next_on":      sched.NextOn,
						"current_c":    st.CurrentTemp,
						"heat_up_rate": st.HeatUpRate,
					},
				})
			}
			st.PreheatLatch = true
		}
	}

	st.TargetTemp = target
	st.PreheatActive = preheat
	return st, evs
}
