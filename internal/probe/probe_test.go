package probe_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/internal/ingest"
	"github.com/mcpstack/monitord/internal/probe"
	"github.com/mcpstack/monitord/internal/store"
)

func TestRunOnce_ClassifiesTargets(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer healthy.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	s := store.New()
	ing := ingest.New(s)
	targets := []probe.Target{
		{ID: "github", Name: "GitHub MCP", URL: healthy.URL},
		{ID: "fs", Name: "Filesystem MCP", URL: failing.URL},
	}

	p, err := probe.New(ing, targets, 2*time.Second, 4)
	require.NoError(t, err)
	defer p.Release()

	p.RunOnce()

	rec, _, err := s.ServiceDetail("github", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusHealthy, rec.Status)
	assert.Equal(t, int64(1), rec.ChecksCount)
	require.NotNil(t, rec.ResponseTime)
	assert.GreaterOrEqual(t, *rec.ResponseTime, float64(0))

	rec, _, err = s.ServiceDetail("fs", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnhealthy, rec.Status)
	assert.Equal(t, "HTTP 500", rec.LastError)
}

func TestRunOnce_UnreachableTarget(t *testing.T) {
	s := store.New()
	ing := ingest.New(s)
	targets := []probe.Target{
		// closed port, connection refused
		{ID: "gone", Name: "Gone MCP", URL: "http://127.0.0.1:1/health"},
	}

	p, err := probe.New(ing, targets, time.Second, 1)
	require.NoError(t, err)
	defer p.Release()

	p.RunOnce()

	rec, _, err := s.ServiceDetail("gone", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, rec.Status)
	assert.NotEmpty(t, rec.LastError)
}

func TestRunOnce_RepeatedRunsIncrementChecks(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer healthy.Close()

	s := store.New()
	ing := ingest.New(s)
	p, err := probe.New(ing, []probe.Target{{ID: "a", Name: "A", URL: healthy.URL}}, time.Second, 2)
	require.NoError(t, err)
	defer p.Release()

	for i := 0; i < 3; i++ {
		p.RunOnce()
	}

	rec, _, err := s.ServiceDetail("a", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.ChecksCount)
}
