package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK        = "ok"
	statusTargetSet = "target_set"
	statusModeSet   = "mode_set"
	statusReloaded  = "options_reloaded"

	errGetState       = "failed to load state"
	errGetDiagnostics = "failed to load diagnostics"
	errReloadOptions  = "failed to reload options"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.Status(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTO for the manual set-point.
type temperatureRequest struct {
	TargetC float64 `json:"target_c" binding:"required"`
}

// SetTemperatureRequest is an exported model for Swagger docs of the setTemperature payload.
type SetTemperatureRequest struct {
	// Target temperature in Celsius
	TargetC float64 `json:"target_c" example:"21.5"`
}

// Request DTO for the operating mode.
type modeRequest struct {
	Mode string `json:"mode" binding:"required"` // HEAT | OFF
}

// SetModeRequest is an exported model for Swagger docs of the setMode payload.
type SetModeRequest struct {
	// Mode to set. Allowed: HEAT, OFF
	Mode string `json:"mode" example:"HEAT"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get thermostat state
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.Status(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "thermostat_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get learned diagnostics
// @Description  Learned heating model, control flags and next-fire projection
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/diagnostics [get]
// @Security     BearerAuth
func (h *Handler) getDiagnostics(c *gin.Context) {
	ctx := c.Request.Context()
	d, err := h.services.Monitoring.Diagnostics(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetDiagnostics, "thermostat_get_diagnostics_failed", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Set manual target temperature
// @Description  Enters manual override until the next schedule transition
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   SetTemperatureRequest  true  "Set-point payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/temperature [post]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Thermostat.SetTargetTemperature(ctx, req.TargetC); err != nil {
		if h.log != nil {
			h.log.Errorw("thermostat_set_temperature_failed", "err", err, "target_c", req.TargetC)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusTargetSet, gin.H{"target_c": req.TargetC})
}

// @Summary      Set operating mode
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body   SetModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Thermostat.SetMode(ctx, req.Mode); err != nil {
		if h.log != nil {
			h.log.Errorw("thermostat_set_mode_failed", "err", err, "mode", req.Mode)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusModeSet, gin.H{"mode": req.Mode})
}

// @Summary      Reload control options
// @Description  Re-reads the control tunables from the config file
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/options/reload [post]
// @Security     BearerAuth
func (h *Handler) reloadOptions(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Thermostat.ReloadOptions(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errReloadOptions, "thermostat_reload_options_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusReloaded, gin.H{})
}
