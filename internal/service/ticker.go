package service

import (
	"context"
	"time"

	"github.com/theonefromthesky/smart-heating/internal/logger"
)

// TickerService drives the control heartbeat. The engine itself has no
// clock, so this loop is what makes the watchdog and the preheat window
// fire on time between sensor messages.
type TickerService struct {
	thermo *ThermostatService
	log    *logger.Logger
}

func NewTickerService(thermo *ThermostatService, log *logger.Logger) *TickerService {
	return &TickerService{thermo: thermo, log: log}
}

// Run ticks at the given interval until ctx is canceled.
func (s *TickerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.thermo.Tick(ctx); err != nil {
				s.log.Errorw("heartbeat tick failed", "error", err)
			}
		}
	}
}
