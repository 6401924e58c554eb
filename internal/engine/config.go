package engine

import "time"

// Config holds the control tunables. Immutable within one Advance call;
// reloadable between calls via an options-reload input.
type Config struct {
	PreheatEnabled     bool
	OvershootEnabled   bool
	LearningEnabled    bool
	WeatherCompEnabled bool

	Hysteresis          float64       // °C below target at which heating starts
	MaxOnTime           time.Duration // watchdog limit for a single burn
	MaxPreheatTime      time.Duration // cap on how early preheat may start
	MinBurnTime         time.Duration // shorter cycles are not learned from
	MaxLossTrackingTime time.Duration // off-cycle tracker gives up after this

	WeatherSensitivity float64 // % heat-up-rate penalty per °C colder than reference
	ComfortTemp        float64 // °C target during scheduled-occupied periods
	SetbackTemp        float64 // °C target otherwise
}

// DefaultConfig mirrors the shipped configuration defaults.
func DefaultConfig() Config {
	return Config{
		PreheatEnabled:      true,
		OvershootEnabled:    true,
		LearningEnabled:     true,
		WeatherCompEnabled:  false,
		Hysteresis:          0.5,
		MaxOnTime:           60 * time.Minute,
		MaxPreheatTime:      60 * time.Minute,
		MinBurnTime:         10 * time.Minute,
		MaxLossTrackingTime: 60 * time.Minute,
		WeatherSensitivity:  4.0,
		ComfortTemp:         20.0,
		SetbackTemp:         16.0,
	}
}
