package monapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/internal/ingest"
	"github.com/mcpstack/monitord/internal/store"
)

// healthCheckPayload is the inbound report body. Status is required but not
// restricted to an enum; upstream sources originate status strings freely.
type healthCheckPayload struct {
	ServiceID    string   `json:"serviceId" validate:"required"`
	ServiceName  string   `json:"serviceName" validate:"required"`
	Status       string   `json:"status" validate:"required"`
	ResponseTime *float64 `json:"responseTime"`
	Error        string   `json:"error"`
}

// submitHealthCheck accepts one externally submitted health report.
// @Summary submit a health check report
// @Tags Monitor
// @Param report body healthCheckPayload true "Health report"
// @Success 200 {object} map[string]interface{}
// @Router /api/health-check [post]
func submitHealthCheck(c echo.Context) error {
	var payload healthCheckPayload
	if err := c.Bind(&payload); err != nil {
		metricsStore.IncErrors()
		return fail(c, http.StatusBadRequest, "Unable to parse health report")
	}
	if err := c.Validate(&payload); err != nil {
		metricsStore.IncErrors()
		return handleValidationError(c, err)
	}

	err := ingestor.Submit(domain.HealthReport{
		ServiceID:    payload.ServiceID,
		ServiceName:  payload.ServiceName,
		Status:       payload.Status,
		ResponseTime: payload.ResponseTime,
		Error:        payload.Error,
	})
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			return fail(c, http.StatusBadRequest, verr.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// getMetrics returns the current snapshot plus the trailing history window.
// @Summary get current metrics and trailing history
// @Tags Monitor
// @Success 200 {object} map[string]interface{}
// @Router /api/metrics [get]
func getMetrics(c echo.Context) error {
	snapshot := metricsStore.CurrentSnapshot()
	history := metricsStore.History(store.DefaultHistoryWindow)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"current": snapshot,
		"history": history,
	})
}

// getServiceMetrics returns one service record with its derived history view.
// @Summary get per-service metrics
// @Tags Monitor
// @Param serviceId path string true "Service ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/metrics/{serviceId} [get]
func getServiceMetrics(c echo.Context) error {
	serviceID := c.Param("serviceId")
	window := cast.ToInt(c.QueryParam("window"))

	record, points, err := metricsStore.ServiceDetail(serviceID, window)
	if err != nil {
		if errors.Is(err, store.ErrServiceNotFound) {
			metricsStore.IncErrors()
			return fail(c, http.StatusNotFound, "Server not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"serviceId":    serviceID,
		"name":         record.Name,
		"status":       record.Status,
		"responseTime": record.ResponseTime,
		"lastError":    record.LastError,
		"lastChecked":  record.LastChecked,
		"checksCount":  record.ChecksCount,
		"history":      points,
	})
}

// getHealth is the liveness endpoint of the monitoring service itself.
// @Summary liveness check
// @Tags Monitor
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func getHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    domain.StatusHealthy,
		"timestamp": time.Now(),
		"uptime":    metricsStore.Uptime(),
	})
}
