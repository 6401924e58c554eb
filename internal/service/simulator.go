package service

import (
	"context"
	"time"

	"github.com/theonefromthesky/smart-heating/internal/logger"
)

// ----------- Simulation constants -----------
const (
	simStartTempC   = 18.0 // room temperature at simulator start °C
	simAmbientC     = 14.0 // temperature the room drifts toward unheated °C
	simHeatPerMin   = 0.12 // °C per minute while the boiler burns
	simCoolPerMin   = 0.04 // °C per minute drift toward ambient
	simOutdoorTempC = 6.0  // reported outdoor temperature °C
)

// SimulatorService feeds synthetic sensor samples into the control loop for
// development setups without real hardware. The room warms while the boiler
// is on and drifts toward ambient while it is off, which is enough for the
// learning estimators to converge on the simulated rates.
type SimulatorService struct {
	thermo *ThermostatService
	log    *logger.Logger

	roomTempC float64
	lastStep  time.Time
}

// NewSimulatorService returns a simulator with defaults.
func NewSimulatorService(thermo *ThermostatService, log *logger.Logger) *SimulatorService {
	return &SimulatorService{
		thermo:    thermo,
		log:       log,
		roomTempC: simStartTempC,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	// Seed the outdoor sensor once; the synthetic weather is static.
	if err := s.thermo.HandleOutdoorTemperature(ctx, simOutdoorTempC); err != nil {
		s.log.Errorw("simulator outdoor sample failed", "error", err)
	}

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.step(ctx, now.UTC())
		}
	}
}

func (s *SimulatorService) step(ctx context.Context, now time.Time) {
	if s.lastStep.IsZero() {
		s.lastStep = now
		return
	}
	elapsedMin := now.Sub(s.lastStep).Minutes()
	if elapsedMin <= 0 {
		return
	}
	s.lastStep = now

	if s.thermo.Status(now).BoilerActive {
		s.roomTempC += simHeatPerMin * elapsedMin
	} else if s.roomTempC > simAmbientC {
		s.roomTempC -= simCoolPerMin * elapsedMin
		if s.roomTempC < simAmbientC {
			s.roomTempC = simAmbientC
		}
	}

	if err := s.thermo.HandleTemperature(ctx, s.roomTempC); err != nil {
		s.log.Errorw("simulator sample failed", "temp_c", s.roomTempC, "error", err)
	}
}
