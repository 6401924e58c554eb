package smartheating

import "time"

// Operating modes and HVAC actions reported over the API.
const (
	ModeHeat = "HEAT"
	ModeOff  = "OFF"

	ActionHeating = "heating"
	ActionIdle    = "idle"
	ActionOff     = "off"

	PresetNone    = "none"
	PresetPreheat = "preheat"
)

// ThermostatStatus is the current externally visible state of the zone.
type ThermostatStatus struct {
	Mode          string     `json:"mode"`   // HEAT | OFF
	Action        string     `json:"action"` // heating | idle | off
	Preset        string     `json:"preset"` // none | preheat
	CurrentTempC  *float64   `json:"current_temp_c,omitempty"`
	TargetTempC   float64    `json:"target_temp_c"`
	BoilerActive  bool       `json:"boiler_active"`
	ScheduleState string     `json:"schedule_state"` // on | off | unknown
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Diagnostics exposes the learned model and control flags for display.
// Read-only; never feeds back into control decisions.
type Diagnostics struct {
	HeatUpRate     float64    `json:"learned_heat_up_rate"`   // °C/min
	HeatLossRate   float64    `json:"learned_heat_loss_rate"` // °C/min
	OvershootC     float64    `json:"learned_overshoot"`      // °C
	OutsideRefC    float64    `json:"outside_ref_temp"`       // °C
	OutdoorTempC   *float64   `json:"outdoor_temp_c,omitempty"`
	ManualOverride bool       `json:"manual_override"`
	PreheatLatched bool       `json:"preheat_latched"`
	NextFireAt     *time.Time `json:"next_fire_at,omitempty"`
}

// Snapshot is the persisted subset of thermostat state, restored at start-up
// and written on every committed change. Single row, id=1.
type Snapshot struct {
	ID            int       `json:"id"`
	Mode          string    `json:"mode"`
	TargetTempC   float64   `json:"target_temp_c"`
	HeatUpRate    float64   `json:"heat_up_rate"`
	HeatLossRate  float64   `json:"heat_loss_rate"`
	OvershootC    float64   `json:"overshoot_c"`
	OutsideRefC   float64   `json:"outside_ref_c"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ThermostatEvent is a single log entry.
type ThermostatEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // BOILER_ON | BOILER_OFF | WATCHDOG_OFF | LEARNED | MODE_CHANGE | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don't expose hash
}
