package handlers

import (
	"context"
	"net/http"
	"time"

	smartheating "github.com/theonefromthesky/smart-heating"
	"github.com/theonefromthesky/smart-heating/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockThermostat struct {
	setTargetErr  error
	setModeErr    error
	reloadErr     error
	lastTarget    float64
	lastMode      string
	reloadCalls   int
	setModeCalls  int
	setTargetCall int
}

func (m *mockThermostat) Restore(ctx context.Context) error                             { return nil }
func (m *mockThermostat) Resync(now time.Time, boilerOn, known bool)                    {}
func (m *mockThermostat) HandleTemperature(ctx context.Context, t float64) error        { return nil }
func (m *mockThermostat) HandleOutdoorTemperature(ctx context.Context, t float64) error { return nil }
func (m *mockThermostat) HandleSchedule(ctx context.Context, u service.ScheduleUpdate) error {
	return nil
}
func (m *mockThermostat) Tick(ctx context.Context) error { return nil }
func (m *mockThermostat) SetTargetTemperature(ctx context.Context, t float64) error {
	m.setTargetCall++
	m.lastTarget = t
	return m.setTargetErr
}
func (m *mockThermostat) SetMode(ctx context.Context, mode string) error {
	m.setModeCalls++
	m.lastMode = mode
	return m.setModeErr
}
func (m *mockThermostat) ReloadOptions(ctx context.Context) error {
	m.reloadCalls++
	return m.reloadErr
}

type mockMonitoring struct {
	status  smartheating.ThermostatStatus
	diag    smartheating.Diagnostics
	statErr error
	diagErr error
}

func (m *mockMonitoring) Status(ctx context.Context) (smartheating.ThermostatStatus, error) {
	return m.status, m.statErr
}
func (m *mockMonitoring) Diagnostics(ctx context.Context) (smartheating.Diagnostics, error) {
	return m.diag, m.diagErr
}

type mockEventLog struct {
	resp     []smartheating.ThermostatEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]smartheating.ThermostatEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
