package engine

import "time"

// NextFire projects when the boiler is next expected to activate. It is a
// pure read for external display and never mutates the preheat latch or any
// other control state.
//
// Active boiler or an ON schedule means "now". Without preheat the next
// scheduled ON time is returned verbatim; with preheat the same lead-time
// computation as the scheduler is applied, clamped to not predict the past.
func NextFire(st State, cfg Config, sched Schedule, now time.Time) (time.Time, bool) {
	if st.BoilerActive || sched.State == ScheduleOn {
		return now, true
	}
	if sched.NextOn.IsZero() {
		return time.Time{}, false
	}
	if !cfg.PreheatEnabled {
		return sched.NextOn, true
	}

	current := st.CurrentTemp
	if !st.CurrentTempOK {
		current = cfg.SetbackTemp
	}
	deficit := cfg.ComfortTemp - current
	if deficit <= 0 {
		return sched.NextOn, true
	}

	fire := sched.NextOn.Add(-preheatLead(deficit, adjustedHeatUpRate(st, cfg), cfg.MaxPreheatTime))
	if fire.Before(now) {
		fire = now
	}
	return fire, true
}
