// Package logsink is the append-only structured event log: one JSON record
// per line in a file under the configured log directory. Writes are
// dispatched to a background goroutine so the request path never waits on
// disk; a full queue drops the event with a warning instead of blocking.
package logsink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/internal/store"
	"github.com/mcpstack/monitord/pkg/common"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	eventsFilename = "events.log"
	queueSize      = 1024

	// DefaultQueryLimit caps log query results when no limit is given.
	DefaultQueryLimit = 100
)

// QueryResult is the filtered, limited view of the event log.
type QueryResult struct {
	Logs     []domain.LogEvent `json:"logs"`
	Total    int               `json:"total"`
	Filtered int               `json:"filtered"`
}

// Sink appends LogEvents to an NDJSON file and serves bounded queries over it.
type Sink struct {
	path  string
	queue chan domain.LogEvent

	mu     sync.Mutex // guards file writes against concurrent queries
	file   *os.File
	closed chan struct{}
	done   chan struct{}
}

// New creates the log directory if absent and opens the event file for
// appending.
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}
	path := filepath.Join(dir, eventsFilename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open event log")
	}
	s := &Sink{
		path:   path,
		queue:  make(chan domain.LogEvent, queueSize),
		file:   file,
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.writeLoop()
	return s, nil
}

// SubscribeReports attaches the sink to the store's report topic so every
// applied health report produces one info event. The subscription is async
// and transactional: events are handled off the caller's goroutine but in
// publish order, which preserves causal order per service.
func (s *Sink) SubscribeReports(bus EventBus.Bus) error {
	return bus.SubscribeAsync(store.TopicHealthReport, func(serviceID string, rec domain.ServiceRecord) {
		s.Write("info", fmt.Sprintf("health check received for %s", serviceID), map[string]interface{}{
			"serviceId":    serviceID,
			"serviceName":  rec.Name,
			"status":       rec.Status,
			"responseTime": rec.ResponseTime,
			"checksCount":  rec.ChecksCount,
		})
	}, true)
}

// Write enqueues one event, fire-and-forget.
func (s *Sink) Write(level, message string, fields map[string]interface{}) {
	event := domain.LogEvent{
		ID:        common.UUIDint64(),
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	select {
	case <-s.closed:
	case s.queue <- event:
	default:
		zap.L().Warn("log sink queue full, dropping event", zap.String("message", message))
	}
}

func (s *Sink) writeLoop() {
	defer close(s.done)
	for {
		select {
		case event := <-s.queue:
			s.append(event)
		case <-s.closed:
			// drain whatever is already queued, then stop
			for {
				select {
				case event := <-s.queue:
					s.append(event)
				default:
					return
				}
			}
		}
	}
}

func (s *Sink) append(event domain.LogEvent) {
	line, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("log sink marshal failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		zap.L().Error("log sink write failed", zap.Error(err))
	}
}

// Query reads the event log oldest-to-newest and returns the last limit
// events matching the optional level filter. Total counts every stored
// event; Filtered counts the level matches before the limit is applied.
func (s *Sink) Query(limit int, level string) (QueryResult, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	s.mu.Lock()
	file, err := os.Open(s.path)
	s.mu.Unlock()
	if err != nil {
		return QueryResult{}, errors.Wrap(err, "open event log")
	}
	defer file.Close()

	var (
		total    int
		filtered []domain.LogEvent
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event domain.LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			zap.L().Debug("skipping malformed log line", zap.Error(err))
			continue
		}
		total++
		if level == "" || event.Level == level {
			filtered = append(filtered, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return QueryResult{}, errors.Wrap(err, "read event log")
	}

	logs := filtered
	if len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	if logs == nil {
		logs = []domain.LogEvent{}
	}
	return QueryResult{Logs: logs, Total: total, Filtered: len(filtered)}, nil
}

// Close stops the writer after draining queued events and closes the file.
func (s *Sink) Close() error {
	select {
	case <-s.closed:
		return nil
	default:
	}
	close(s.closed)
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
