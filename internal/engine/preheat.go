package engine

import "time"

const maxWeatherPenalty = 0.8

// shouldPreheat reports whether "now" is inside the pre-heat window for the
// next scheduled comfort period. Once latched it stays engaged regardless of
// the recomputed ETA, so a fluctuating estimate cannot abort a started cycle.
func shouldPreheat(st State, cfg Config, sched Schedule, in Input) bool {
	if st.PreheatLatch {
		return true
	}
	if sched.NextOn.IsZero() {
		return false
	}
	deficit := cfg.ComfortTemp - st.CurrentTemp
	if deficit <= 0 {
		// Warm enough already; plain hysteresis will handle the slot start.
		return false
	}
	lead := preheatLead(deficit, adjustedHeatUpRate(st, cfg), cfg.MaxPreheatTime)
	return !in.Now.Before(sched.NextOn.Add(-lead))
}

// adjustedHeatUpRate applies the weather-compensation penalty: the colder it
// is outside relative to the conditions the rate was learned under, the
// slower the space is assumed to heat.
func adjustedHeatUpRate(st State, cfg Config) float64 {
	rate := st.HeatUpRate
	if !cfg.WeatherCompEnabled || !st.OutdoorTempOK {
		return rate
	}
	drop := st.OutsideRefTemp - st.OutdoorTemp
	if drop <= 0 {
		return rate
	}
	penalty := drop * cfg.WeatherSensitivity / 100
	if penalty > maxWeatherPenalty {
		penalty = maxWeatherPenalty
	}
	return rate * (1 - penalty)
}

// preheatLead converts a temperature deficit into a start-early duration,
// capped so a pessimistic learned rate cannot fire the boiler hours ahead.
func preheatLead(deficit, rate float64, max time.Duration) time.Duration {
	if rate <= 0 {
		return max
	}
	lead := time.Duration(deficit / rate * float64(time.Minute))
	if lead > max {
		lead = max
	}
	return lead
}
