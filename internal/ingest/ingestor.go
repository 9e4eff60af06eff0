// Package ingest accepts externally submitted health reports, validates
// them, and applies them to the metrics store.
package ingest

import (
	"fmt"
	"strings"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/internal/store"
)

// ValidationError reports a missing or malformed report field. It is
// surfaced to HTTP callers as a 400 response.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Ingestor is the write-path component in front of the store.
type Ingestor struct {
	store *store.Store
}

// New creates an ingestor writing into st.
func New(st *store.Store) *Ingestor {
	return &Ingestor{store: st}
}

// Submit validates and applies one health report. ServiceID, ServiceName and
// Status are required; status values are accepted permissively since upstream
// sources originate them freely. A validation failure increments the global
// error counter and performs no record mutation.
func (i *Ingestor) Submit(report domain.HealthReport) error {
	if err := validate(report); err != nil {
		i.store.IncErrors()
		return err
	}
	i.store.Record(report)
	return nil
}

func validate(report domain.HealthReport) error {
	switch {
	case strings.TrimSpace(report.ServiceID) == "":
		return &ValidationError{Field: "serviceId"}
	case strings.TrimSpace(report.ServiceName) == "":
		return &ValidationError{Field: "serviceName"}
	case strings.TrimSpace(report.Status) == "":
		return &ValidationError{Field: "status"}
	}
	return nil
}
