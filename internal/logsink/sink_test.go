package logsink_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/internal/logsink"
	"github.com/mcpstack/monitord/internal/store"
)

func newSink(t *testing.T) (*logsink.Sink, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "logs")
	sink, err := logsink.New(dir)
	require.NoError(t, err)
	return sink, dir
}

func TestNew_CreatesLogDirectory(t *testing.T) {
	sink, dir := newSink(t)
	defer sink.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteAndQuery(t *testing.T) {
	sink, _ := newSink(t)

	sink.Write("info", "service github reported healthy", map[string]interface{}{"serviceId": "github"})
	sink.Write("error", "service fs reported error", map[string]interface{}{"serviceId": "fs"})
	sink.Write("info", "service github reported healthy", nil)
	require.NoError(t, sink.Close())

	result, err := sink.Query(0, "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Filtered)
	require.Len(t, result.Logs, 3)

	// oldest-to-newest order, NDJSON fields round-trip
	assert.Equal(t, "service github reported healthy", result.Logs[0].Message)
	assert.Equal(t, "github", result.Logs[0].Fields["serviceId"])
	assert.Equal(t, "error", result.Logs[1].Level)
	assert.NotZero(t, result.Logs[0].ID)
	assert.False(t, result.Logs[0].Timestamp.IsZero())
}

func TestQuery_LevelFilter(t *testing.T) {
	sink, _ := newSink(t)

	for i := 0; i < 4; i++ {
		sink.Write("info", "ping", nil)
	}
	sink.Write("error", "boom", nil)
	require.NoError(t, sink.Close())

	result, err := sink.Query(100, "error")
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 1, result.Filtered)
	require.Len(t, result.Logs, 1)
	assert.Equal(t, "boom", result.Logs[0].Message)
}

func TestQuery_LimitKeepsNewest(t *testing.T) {
	sink, _ := newSink(t)

	for i := 0; i < 10; i++ {
		sink.Write("info", "event", map[string]interface{}{"seq": i})
	}
	require.NoError(t, sink.Close())

	result, err := sink.Query(3, "")
	require.NoError(t, err)
	assert.Equal(t, 10, result.Total)
	assert.Equal(t, 10, result.Filtered)
	require.Len(t, result.Logs, 3)
	// jsoniter decodes numeric field values as float64
	assert.Equal(t, float64(7), result.Logs[0].Fields["seq"])
	assert.Equal(t, float64(9), result.Logs[2].Fields["seq"])
}

func TestQuery_EmptyLog(t *testing.T) {
	sink, _ := newSink(t)
	defer sink.Close()

	result, err := sink.Query(0, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.Filtered)
	assert.NotNil(t, result.Logs)
	assert.Empty(t, result.Logs)
}

func TestSubscribeReports_WritesInfoEvent(t *testing.T) {
	sink, _ := newSink(t)

	s := store.New()
	require.NoError(t, sink.SubscribeReports(s.Bus()))

	rt := 12.0
	s.Record(domain.HealthReport{
		ServiceID:    "github",
		ServiceName:  "GitHub MCP",
		Status:       domain.StatusHealthy,
		ResponseTime: &rt,
	})

	// wait for the async subscriber, then flush the sink
	s.Bus().WaitAsync()
	require.NoError(t, sink.Close())

	result, err := sink.Query(0, "")
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	event := result.Logs[0]
	assert.Equal(t, "info", event.Level)
	assert.Equal(t, "github", event.Fields["serviceId"])
	assert.Equal(t, "GitHub MCP", event.Fields["serviceName"])
	assert.Equal(t, domain.StatusHealthy, event.Fields["status"])
}

func TestClose_Idempotent(t *testing.T) {
	sink, _ := newSink(t)
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
}
