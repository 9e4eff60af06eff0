// Package metrics keeps a local time-series archive of per-service latency
// observations using an embedded tstorage instance under the workdir. The
// archive is strictly best-effort: every operation is a no-op when the
// storage failed to open, and callers never depend on its success.
package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

const latencyMetric = "mcp_response_ms"

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the latency archive under workdir/metrics.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Milliseconds),
		tstorage.WithRetention(7*24*time.Hour),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

// InsertLatency records one response-time observation for a service.
func InsertLatency(serviceID string, ms float64, ts time.Time) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	err := s.InsertRows([]tstorage.Row{
		{
			Metric: latencyMetric,
			Labels: []tstorage.Label{{Name: "service", Value: serviceID}},
			DataPoint: tstorage.DataPoint{
				Timestamp: ts.UnixMilli(),
				Value:     ms,
			},
		},
	})
	if err != nil {
		zap.L().Debug("latency archive insert failed", zap.String("service", serviceID), zap.Error(err))
	}
}

// SelectLatency returns archived latency points for a service in [start, end].
func SelectLatency(serviceID string, start, end time.Time) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(latencyMetric,
		[]tstorage.Label{{Name: "service", Value: serviceID}},
		start.UnixMilli(), end.UnixMilli())
	if err == tstorage.ErrNoDataPoints {
		return nil, nil
	}
	return points, err
}

// Close flushes and closes the archive.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
