package engine

import (
	"fmt"
	"math"
	"time"
)

// All learned parameters use the same exponential moving average.
const (
	emaOldWeight = 0.8
	emaNewWeight = 0.2
)

// Validity filters shared by the estimators.
const (
	minLearnDelta = 0.2 // °C, smaller swings are inconclusive
	maxLearnDelta = 1.5 // °C, larger jumps indicate a sensor fault

	// The off-cycle tracker needs at least this long to say anything
	// meaningful about thermal mass or heat loss.
	minOffCycleTrack = 30 * time.Minute
)

// unknownTemp marks a heat-cycle start without a valid reading; any cycle
// seeded with it is rejected by the estimator.
var unknownTemp = math.NaN()

// learnHeatUpRate folds the just-finished burn cycle into the heat-up-rate
// EMA, and keeps the outdoor reference temperature in step with the
// conditions the rate was observed under.
func learnHeatUpRate(st State, cfg Config, now time.Time, evs []Event) (State, []Event) {
	if st.HeatCycleStart.IsZero() || math.IsNaN(st.HeatCycleStartTemp) {
		return st, evs
	}
	duration := now.Sub(st.HeatCycleStart)
	if duration < cfg.MinBurnTime {
		return st, evs
	}
	delta := st.CurrentTemp - st.HeatCycleStartTemp
	if delta < minLearnDelta || delta > maxLearnDelta {
		return st, evs
	}

	sample := delta / duration.Minutes()
	st.HeatUpRate = clamp(minHeatUpRate, maxHeatUpRate, ema(st.HeatUpRate, sample))
	if st.OutdoorTempOK {
		st.OutsideRefTemp = ema(st.OutsideRefTemp, st.OutdoorTemp)
	}

	evs = append(evs, Event{
		Type:        EventLearned,
		Description: fmt.Sprintf("heat-up rate now %.4f°C/min", st.HeatUpRate),
		Fields: map[string]any{
			"parameter":    "heat_up_rate",
			"sample":       sample,
			"duration_min": duration.Minutes(),
		},
	})
	return st, evs
}

// finalizeOffCycle closes the post-shutoff tracking window. The observed
// peak yields the overshoot sample; the decay from the peak to the current
// reading yields the heat-loss sample. Degenerate windows are discarded.
func finalizeOffCycle(st State, cfg Config, now time.Time, evs []Event) (State, []Event) {
	st.LossTracking = false

	if now.Sub(st.CoolCycleStart) >= minOffCycleTrack {
		if rise := st.PeakTemp - st.CoolCycleStartTemp; rise > 0 && rise <= maxLearnDelta {
			st.Overshoot = clamp(minOvershoot, maxOvershoot, ema(st.Overshoot, rise))
			evs = append(evs, Event{
				Type:        EventLearned,
				Description: fmt.Sprintf("overshoot now %.2f°C", st.Overshoot),
				Fields:      map[string]any{"parameter": "overshoot", "sample": rise},
			})
		}
	}

	sincePeak := now.Sub(st.PeakTempAt)
	if sincePeak < minOffCycleTrack {
		return st, evs
	}
	drop := st.PeakTemp - st.CurrentTemp
	if drop < minLearnDelta {
		return st, evs
	}

	sample := drop / sincePeak.Minutes()
	st.HeatLossRate = clamp(minHeatLossRate, maxHeatLossRate, ema(st.HeatLossRate, sample))
	evs = append(evs, Event{
		Type:        EventLearned,
		Description: fmt.Sprintf("heat-loss rate now %.4f°C/min", st.HeatLossRate),
		Fields: map[string]any{
			"parameter":      "heat_loss_rate",
			"sample":         sample,
			"since_peak_min": sincePeak.Minutes(),
		},
	})
	return st, evs
}

func ema(old, sample float64) float64 {
	return old*emaOldWeight + sample*emaNewWeight
}
