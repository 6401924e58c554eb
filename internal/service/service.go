package service

import (
	"context"
	"time"

	smartheating "github.com/theonefromthesky/smart-heating"
	"github.com/theonefromthesky/smart-heating/internal/engine"
	"github.com/theonefromthesky/smart-heating/internal/logger"
	"github.com/theonefromthesky/smart-heating/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Boiler is the actuator behind the control loop. Dispatch is
// fire-and-forget; failures are logged, never retried in-line.
type Boiler interface {
	TurnOn() error
	TurnOff() error
}

// Thermostat exposes the control-loop entry points. All mutations of the
// zone state go through here. Restore and Resync run once at start-up,
// before the loops are started.
type Thermostat interface {
	Restore(ctx context.Context) error
	Resync(now time.Time, boilerOn, known bool)
	HandleTemperature(ctx context.Context, tempC float64) error
	HandleOutdoorTemperature(ctx context.Context, tempC float64) error
	HandleSchedule(ctx context.Context, upd ScheduleUpdate) error
	Tick(ctx context.Context) error
	SetTargetTemperature(ctx context.Context, tempC float64) error
	SetMode(ctx context.Context, mode string) error
	ReloadOptions(ctx context.Context) error
}

// Monitoring exposes read-only state for the API and the websocket feed.
type Monitoring interface {
	Status(ctx context.Context) (smartheating.ThermostatStatus, error)
	Diagnostics(ctx context.Context) (smartheating.Diagnostics, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]smartheating.ThermostatEvent, error)
}

// Ticker runs the heartbeat loop that re-evaluates the control decision
// even when no sensor messages arrive. Stop via context cancellation.
type Ticker interface {
	Run(ctx context.Context, tick time.Duration)
}

// Simulator runs an optional synthetic room model for development setups
// without real sensors. Stop via context cancellation.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Thermostat
	Monitoring
	EventLog
	Ticker
	Simulator
	Authorization
}

// NewService wires the repository layer and the boiler actuator into the
// concrete services. The options func re-reads control tunables on demand,
// backed by the config file in main.
func NewService(repos *repository.Repository, boiler Boiler, options func() engine.Config, log *logger.Logger) *Service {
	thermo := NewThermostatService(boiler, repos.SnapshotRepo, repos.EventRepo, options, log)
	return &Service{
		Thermostat:    thermo,
		Monitoring:    NewMonitoringService(thermo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Ticker:        NewTickerService(thermo, log),
		Simulator:     NewSimulatorService(thermo, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
