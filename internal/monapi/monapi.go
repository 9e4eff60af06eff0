// Package monapi implements the external HTTP surface of the monitoring
// service: report ingestion, metrics snapshots, per-service detail, log
// queries, and liveness.
package monapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mcpstack/monitord/internal/ingest"
	"github.com/mcpstack/monitord/internal/logsink"
	"github.com/mcpstack/monitord/internal/store"
	"github.com/mcpstack/monitord/internal/webserver"
)

var (
	metricsStore *store.Store
	ingestor     *ingest.Ingestor
	sink         *logsink.Sink
)

// InitRouter wires handler dependencies and registers all /api routes.
func InitRouter(st *store.Store, ing *ingest.Ingestor, sk *logsink.Sink) {
	metricsStore = st
	ingestor = ing
	sink = sk

	webserver.ApiPOST("/health-check", submitHealthCheck)
	webserver.ApiGET("/metrics", getMetrics)
	webserver.ApiGET("/metrics/:serviceId", getServiceMetrics)
	webserver.ApiGET("/logs", getLogs)
	webserver.ApiGET("/health", getHealth)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{"error": message})
}

// handleValidationError converts validator failures into the 400 shape the
// dashboard expects, naming the first offending field in json form.
func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("missing required field: %s", verrs[0].Field()))
	}
	return fail(c, http.StatusBadRequest, "Invalid request payload")
}
