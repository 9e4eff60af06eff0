package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/internal/ingest"
	"github.com/mcpstack/monitord/internal/store"
)

func TestSubmit_ValidReport(t *testing.T) {
	s := store.New()
	ing := ingest.New(s)

	rt := 42.0
	err := ing.Submit(domain.HealthReport{
		ServiceID:    "github",
		ServiceName:  "GitHub MCP",
		Status:       domain.StatusHealthy,
		ResponseTime: &rt,
	})
	require.NoError(t, err)

	rec, _, err := s.ServiceDetail("github", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ChecksCount)
	assert.Equal(t, domain.StatusHealthy, rec.Status)
	require.NotNil(t, rec.ResponseTime)
	assert.Equal(t, 42.0, *rec.ResponseTime)
}

func TestSubmit_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		report domain.HealthReport
		field  string
	}{
		{"missing serviceId", domain.HealthReport{ServiceName: "X", Status: "healthy"}, "serviceId"},
		{"missing serviceName", domain.HealthReport{ServiceID: "x", Status: "healthy"}, "serviceName"},
		{"missing status", domain.HealthReport{ServiceID: "x", ServiceName: "X"}, "status"},
		{"blank status", domain.HealthReport{ServiceID: "x", ServiceName: "X", Status: "   "}, "status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := store.New()
			ing := ingest.New(s)
			_, errsBefore := s.Counters()

			err := ing.Submit(tc.report)
			require.Error(t, err)

			var verr *ingest.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)

			// the error counter moves by exactly one, nothing else mutates
			_, errsAfter := s.Counters()
			assert.Equal(t, errsBefore+1, errsAfter)
			if tc.report.ServiceID != "" {
				_, _, err := s.ServiceDetail(tc.report.ServiceID, 0)
				assert.ErrorIs(t, err, store.ErrServiceNotFound)
			}
		})
	}
}

func TestSubmit_PermissiveStatus(t *testing.T) {
	s := store.New()
	ing := ingest.New(s)

	err := ing.Submit(domain.HealthReport{
		ServiceID:   "custom",
		ServiceName: "Custom MCP",
		Status:      "warming-up",
	})
	require.NoError(t, err)

	rec, _, err := s.ServiceDetail("custom", 0)
	require.NoError(t, err)
	assert.Equal(t, "warming-up", rec.Status)

	// an off-enum status is stored as reported but never counted healthy
	snapshot := s.CurrentSnapshot()
	assert.Equal(t, 1, snapshot.ServerCount)
	assert.Equal(t, 0, snapshot.HealthyCount)
}
