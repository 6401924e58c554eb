package service

import "time"

// ScheduleUpdate is the decoded schedule signal from the occupancy source.
// NextOn is the zero time when no upcoming ON slot is known.
type ScheduleUpdate struct {
	State  string    // "on" | "off"
	NextOn time.Time // next scheduled ON start, zero if unknown
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "BOILER_ON", "BOILER_OFF", "WATCHDOG_OFF", "LEARNED", ...
}
