package engine

import "time"

// InputKind enumerates the external triggers that drive the control loop.
type InputKind int

const (
	InputTick InputKind = iota
	InputSample
	InputOutdoorSample
	InputScheduleSignal
	InputSetTarget
	InputSetMode
	InputOptionsReload
)

func (k InputKind) String() string {
	switch k {
	case InputTick:
		return "tick"
	case InputSample:
		return "sample"
	case InputOutdoorSample:
		return "outdoor_sample"
	case InputScheduleSignal:
		return "schedule_signal"
	case InputSetTarget:
		return "set_target"
	case InputSetMode:
		return "set_mode"
	case InputOptionsReload:
		return "options_reload"
	default:
		return "unknown"
	}
}

// Schedule is the latest snapshot of the external schedule signal.
// NextOn is the zero time when no upcoming ON slot is known.
type Schedule struct {
	State  ScheduleState
	NextOn time.Time
}

// Input is one external trigger plus the ambient context the engine needs.
// Temp carries the sample for InputSample/InputOutdoorSample and the
// requested set-point for InputSetTarget; Mode is only read for InputSetMode.
type Input struct {
	Kind     InputKind
	Now      time.Time
	Temp     float64
	Mode     Mode
	Schedule Schedule
}

// Command is an actuator instruction emitted by Advance. Dispatch is
// fire-and-forget; the engine assumes the command took effect.
type Command int

const (
	CmdTurnOn Command = iota + 1
	CmdTurnOff
)

func (c Command) String() string {
	if c == CmdTurnOn {
		return "turn_on"
	}
	return "turn_off"
}

// Event types recorded for transitions and learning outcomes.
const (
	EventBoilerOn       = "BOILER_ON"
	EventBoilerOff      = "BOILER_OFF"
	EventWatchdogOff    = "WATCHDOG_OFF"
	EventSafetyOff      = "SAFETY_OFF"
	EventModeChange     = "MODE_CHANGE"
	EventManualOverride = "MANUAL_OVERRIDE"
	EventScheduleChange = "SCHEDULE_CHANGE"
	EventPreheatStart   = "PREHEAT_START"
	EventLearned        = "LEARNED"
)

// Event is a structured diagnostic emitted by Advance. The adapter layer
// forwards these to the logger and the persisted event log.
type Event struct {
	Type        string
	Description string
	Fields      map[string]any
}
