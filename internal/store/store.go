// Package store owns the monitoring core: the per-service state table, the
// bounded rolling history of system-wide samples, and the process-wide
// request/error counters. All shared state is guarded by one coarse lock,
// which matches the low-volume, latency-insensitive nature of the workload.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/montanaflynn/stats"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/pkg/metrics"
)

// ErrServiceNotFound is returned when a service id was never reported.
var ErrServiceNotFound = errors.New("service not found")

const (
	// HistoryCapacity is the maximum number of retained samples; the oldest
	// sample is evicted once the sequence exceeds it.
	HistoryCapacity = 100

	// DefaultHistoryWindow is the trailing window returned by read APIs.
	DefaultHistoryWindow = 20
)

// TopicHealthReport is the event bus topic published on every applied report.
const TopicHealthReport = "monitor.health.report"

// Snapshot is one atomic read of the whole store: a copy of the service
// table plus freshly computed aggregates.
type Snapshot struct {
	Timestamp       time.Time                       `json:"timestamp"`
	Uptime          float64                         `json:"uptime"`
	TotalRequests   int64                           `json:"totalRequests"`
	ErrorCount      int64                           `json:"errorCount"`
	Servers         map[string]domain.ServiceRecord `json:"servers"`
	ServerCount     int                             `json:"serverCount"`
	HealthyCount    int                             `json:"healthyCount"`
	AvgResponseTime float64                         `json:"avgResponseTime"`
	CPUPercent      float64                         `json:"cpuPercent"`
	MemPercent      float64                         `json:"memPercent"`
}

// ServicePoint is one entry of the derived per-service history view.
type ServicePoint struct {
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status"`
	ResponseTime *float64  `json:"responseTime"`
}

// Store is the health-aggregation and rolling-metrics engine.
type Store struct {
	mu        sync.RWMutex
	services  map[string]*domain.ServiceRecord
	history   []domain.SystemSample
	requests  int64
	errors    int64
	startTime time.Time

	capacity int
	bus      EventBus.Bus
}

// New creates an empty store with the default history capacity.
func New() *Store {
	return NewWithCapacity(HistoryCapacity)
}

// NewWithCapacity creates an empty store retaining at most capacity samples.
func NewWithCapacity(capacity int) *Store {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &Store{
		services:  make(map[string]*domain.ServiceRecord),
		history:   make([]domain.SystemSample, 0, capacity),
		startTime: time.Now(),
		capacity:  capacity,
		bus:       EventBus.New(),
	}
}

// Bus exposes the store's event bus so collaborators (the log sink) can
// subscribe to report events.
func (s *Store) Bus() EventBus.Bus {
	return s.bus
}

// IncRequests bumps the process-wide total-request counter.
func (s *Store) IncRequests() {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()
}

// IncErrors bumps the process-wide error counter.
func (s *Store) IncErrors() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

// Counters returns the current request and error counters.
func (s *Store) Counters() (requests, errors int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests, s.errors
}

// Uptime returns seconds elapsed since the store was created.
func (s *Store) Uptime() float64 {
	return time.Since(s.startTime).Seconds()
}

// Record applies one validated health report. It is the sole write path into
// the service table: the record is created with status unknown on first
// sight, then every field is overwritten in place and the check counter is
// incremented. The applied state is published on the event bus so
// subscribers observe reports in causal order.
func (s *Store) Record(report domain.HealthReport) domain.ServiceRecord {
	now := time.Now()

	s.mu.Lock()
	rec, found := s.services[report.ServiceID]
	if !found {
		rec = &domain.ServiceRecord{
			Name:   report.ServiceName,
			Status: domain.StatusUnknown,
		}
		s.services[report.ServiceID] = rec
	}
	rec.Name = report.ServiceName
	rec.Status = report.Status
	if report.ResponseTime != nil {
		rt := *report.ResponseTime
		rec.ResponseTime = &rt
	} else {
		rec.ResponseTime = nil
	}
	rec.LastError = report.Error
	if now.After(rec.LastChecked) {
		rec.LastChecked = now
	}
	rec.ChecksCount++
	applied := *rec
	// Publish before releasing the lock so events for the same service keep
	// the causal order of their reports. Subscribers are async and do not
	// block this path.
	s.bus.Publish(TopicHealthReport, report.ServiceID, applied)
	s.mu.Unlock()

	if report.ResponseTime != nil {
		metrics.InsertLatency(report.ServiceID, *report.ResponseTime, now)
	}
	return applied
}

// Sample captures one system-wide aggregate at a single consistent instant
// and appends it to the rolling history, evicting the oldest entry past
// capacity.
func (s *Store) Sample() domain.SystemSample {
	cpuPct, memPct := hostGauges()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleLocked(cpuPct, memPct)
}

func (s *Store) sampleLocked(cpuPct, memPct float64) domain.SystemSample {
	sample := domain.SystemSample{
		Timestamp:     time.Now(),
		Uptime:        time.Since(s.startTime).Seconds(),
		TotalRequests: s.requests,
		ErrorCount:    s.errors,
		ServerCount:   len(s.services),
		HealthyCount:  s.healthyLocked(),
		CPUPercent:    cpuPct,
		MemPercent:    memPct,
	}
	s.history = append(s.history, sample)
	if len(s.history) > s.capacity {
		s.history = s.history[len(s.history)-s.capacity:]
	}
	return sample
}

func (s *Store) healthyLocked() int {
	healthy := 0
	for _, rec := range s.services {
		if rec.Status == domain.StatusHealthy {
			healthy++
		}
	}
	return healthy
}

// CurrentSnapshot returns one atomic read of the full service table plus
// freshly computed aggregates. Matching the source behavior of sampling on
// every metrics read, it appends a sample to the history as a side effect;
// callers relying on stable idempotent reads should be aware a read grows
// the history.
func (s *Store) CurrentSnapshot() Snapshot {
	cpuPct, memPct := hostGauges()

	s.mu.Lock()
	defer s.mu.Unlock()

	servers := make(map[string]domain.ServiceRecord, len(s.services))
	latencies := make([]float64, 0, len(s.services))
	for id, rec := range s.services {
		servers[id] = *rec
		if rec.ResponseTime != nil {
			latencies = append(latencies, *rec.ResponseTime)
		}
	}

	avg := 0.0
	if len(latencies) > 0 {
		avg, _ = stats.Mean(latencies)
	}

	sample := s.sampleLocked(cpuPct, memPct)

	return Snapshot{
		Timestamp:       sample.Timestamp,
		Uptime:          sample.Uptime,
		TotalRequests:   sample.TotalRequests,
		ErrorCount:      sample.ErrorCount,
		Servers:         servers,
		ServerCount:     sample.ServerCount,
		HealthyCount:    sample.HealthyCount,
		AvgResponseTime: avg,
		CPUPercent:      cpuPct,
		MemPercent:      memPct,
	}
}

// History returns the most recent window samples, oldest first. A window
// below one falls back to the default window; the result never exceeds the
// retained capacity.
func (s *Store) History(window int) []domain.SystemSample {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if window > len(s.history) {
		window = len(s.history)
	}
	out := make([]domain.SystemSample, window)
	copy(out, s.history[len(s.history)-window:])
	return out
}

// ServiceDetail returns a copy of one service record together with a derived
// per-service history view. The store retains only system-wide aggregate
// history, so the view reuses the service's current status and response time
// across all returned timestamps; it is an approximation, not a
// time-accurate series.
func (s *Store) ServiceDetail(serviceID string, window int) (domain.ServiceRecord, []ServicePoint, error) {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, found := s.services[serviceID]
	if !found {
		return domain.ServiceRecord{}, nil, ErrServiceNotFound
	}

	if window > len(s.history) {
		window = len(s.history)
	}
	points := make([]ServicePoint, 0, window)
	for _, sample := range s.history[len(s.history)-window:] {
		points = append(points, ServicePoint{
			Timestamp:    sample.Timestamp,
			Status:       rec.Status,
			ResponseTime: rec.ResponseTime,
		})
	}
	return *rec, points, nil
}

// hostGauges reads host CPU and memory usage, best-effort.
func hostGauges() (cpuPct, memPct float64) {
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPct = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		memPct = vm.UsedPercent
	}
	return cpuPct, memPct
}
