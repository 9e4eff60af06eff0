package monapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/mcpstack/monitord/internal/logsink"
)

// getLogs returns the last N stored log events with optional level filter.
// @Summary query the event log
// @Tags Monitor
// @Param limit query int false "Maximum events returned (default 100)"
// @Param level query string false "Level filter"
// @Success 200 {object} logsink.QueryResult
// @Router /api/logs [get]
func getLogs(c echo.Context) error {
	limit := cast.ToInt(c.QueryParam("limit"))
	if limit <= 0 {
		limit = logsink.DefaultQueryLimit
	}
	level := c.QueryParam("level")

	result, err := sink.Query(limit, level)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
