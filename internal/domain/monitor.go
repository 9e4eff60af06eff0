package domain

import "time"

// Monitoring module related models

// Service status values. Upstream sources originate status strings freely,
// so any non-empty value is stored as reported; only StatusHealthy is
// credited by the aggregate healthy count.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusUnknown   = "unknown"
	StatusError     = "error"
)

// ServiceRecord is the current known state of one monitored MCP service.
// Records are created on first sight and mutated in place; they are never
// deleted during process lifetime.
type ServiceRecord struct {
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	ResponseTime *float64  `json:"responseTime"` // milliseconds, nil until first report carries one
	LastError    string    `json:"lastError,omitempty"`
	LastChecked  time.Time `json:"lastChecked"`
	ChecksCount  int64     `json:"checksCount"`
}

// SystemSample is an immutable point-in-time aggregate snapshot of the
// whole fleet. Cumulative counters are non-decreasing across the ordered
// sample sequence, and HealthyCount <= ServerCount always holds.
type SystemSample struct {
	Timestamp     time.Time `json:"timestamp"`
	Uptime        float64   `json:"uptime"` // seconds since process start
	TotalRequests int64     `json:"totalRequests"`
	ErrorCount    int64     `json:"errorCount"`
	ServerCount   int       `json:"serverCount"`
	HealthyCount  int       `json:"healthyCount"`
	CPUPercent    float64   `json:"cpuPercent"`
	MemPercent    float64   `json:"memPercent"`
}

// HealthReport is one externally submitted health observation.
type HealthReport struct {
	ServiceID    string   `json:"serviceId" form:"serviceId"`
	ServiceName  string   `json:"serviceName" form:"serviceName"`
	Status       string   `json:"status" form:"status"`
	ResponseTime *float64 `json:"responseTime" form:"responseTime"`
	Error        string   `json:"error" form:"error"`
}

// LogEvent is one append-only structured audit record, stored as a single
// newline-delimited JSON line by the log sink.
type LogEvent struct {
	ID        int64                  `json:"id,string"`
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}
