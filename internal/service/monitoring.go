package service

import (
	"context"
	"time"

	smartheating "github.com/theonefromthesky/smart-heating"
)

// MonitoringService exposes the live thermostat state read-only.
type MonitoringService struct {
	thermo *ThermostatService
}

func NewMonitoringService(thermo *ThermostatService) *MonitoringService {
	return &MonitoringService{thermo: thermo}
}

func (s *MonitoringService) Status(_ context.Context) (smartheating.ThermostatStatus, error) {
	return s.thermo.Status(time.Now().UTC()), nil
}

func (s *MonitoringService) Diagnostics(_ context.Context) (smartheating.Diagnostics, error) {
	return s.thermo.Diagnostics(time.Now().UTC()), nil
}
