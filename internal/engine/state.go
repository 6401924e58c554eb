package engine

import "time"

// Mode is the user-commanded operating mode.
type Mode string

const (
	ModeOff  Mode = "OFF"
	ModeHeat Mode = "HEAT"
)

// ScheduleState is the last observed state of the external schedule.
type ScheduleState int

const (
	ScheduleUnknown ScheduleState = iota
	ScheduleOff
	ScheduleOn
)

func (s ScheduleState) String() string {
	switch s {
	case ScheduleOn:
		return "on"
	case ScheduleOff:
		return "off"
	default:
		return "unknown"
	}
}

// Default learned parameters, used until the snapshot carries real values.
const (
	DefaultHeatUpRate   = 0.1  // °C/min
	DefaultHeatLossRate = 0.1  // °C/min
	DefaultOvershoot    = 0.0  // °C
	DefaultOutsideRef   = 10.0 // °C
)

// Clamp bounds for the learned parameters.
const (
	minHeatUpRate   = 0.01
	maxHeatUpRate   = 1.0
	minHeatLossRate = 0.001
	maxHeatLossRate = 0.5
	minOvershoot    = 0.0
	maxOvershoot    = 1.0
)

// State is the full thermostat state. It is a plain value: Advance takes a
// State and returns a new one, so callers own all sharing and locking.
type State struct {
	Mode Mode

	CurrentTemp   float64
	CurrentTempOK bool // false until the first valid sensor sample

	OutdoorTemp   float64
	OutdoorTempOK bool

	TargetTemp     float64
	BoilerActive   bool
	ManualOverride bool
	PreheatLatch   bool
	PreheatActive  bool // display preset, recomputed each invocation
	LastSchedule   ScheduleState

	// Heat-cycle tracking, stamped when the boiler turns on.
	HeatCycleStart     time.Time
	HeatCycleStartTemp float64

	// Off-cycle tracking, armed when the boiler turns off. One tracker feeds
	// both the overshoot and the heat-loss estimators.
	CoolCycleStart     time.Time
	CoolCycleStartTemp float64
	PeakTemp           float64
	PeakTempAt         time.Time
	LossTracking       bool

	// Learned parameters, persisted across restarts.
	HeatUpRate     float64 // °C/min, heating speed of the space
	HeatLossRate   float64 // °C/min, cooling speed after shutoff
	Overshoot      float64 // °C, residual rise after shutoff
	OutsideRefTemp float64 // °C outdoors when HeatUpRate was last calibrated
}

// NewState returns an initial state with default learned parameters.
// The caller overwrites fields from the restored snapshot, then Normalize.
func NewState() State {
	return State{
		Mode:           ModeOff,
		HeatUpRate:     DefaultHeatUpRate,
		HeatLossRate:   DefaultHeatLossRate,
		Overshoot:      DefaultOvershoot,
		OutsideRefTemp: DefaultOutsideRef,
	}
}

// Normalize clamps the learned parameters into their legal ranges.
// Called after restoring a snapshot so a corrupt store cannot poison control.
func (s *State) Normalize() {
	s.HeatUpRate = clamp(minHeatUpRate, maxHeatUpRate, s.HeatUpRate)
	s.HeatLossRate = clamp(minHeatLossRate, maxHeatLossRate, s.HeatLossRate)
	s.Overshoot = clamp(minOvershoot, maxOvershoot, s.Overshoot)
	if s.Mode != ModeHeat {
		s.Mode = ModeOff
	}
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
