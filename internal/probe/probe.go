// Package probe polls the health endpoints of configured MCP targets and
// feeds the results into the ingestor as ordinary health reports, so pushed
// and polled observations share one write path.
package probe

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/guonaihong/gout"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/mcpstack/monitord/internal/domain"
	"github.com/mcpstack/monitord/internal/ingest"
)

const defaultMaxWorkers = 10

// Target is one MCP service health endpoint to poll.
type Target struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Prober polls targets concurrently through a bounded worker pool.
type Prober struct {
	targets  []Target
	timeout  time.Duration
	ingestor *ingest.Ingestor
	pool     *ants.Pool
}

// New creates a prober. maxWorkers below one falls back to the default.
func New(ingestor *ingest.Ingestor, targets []Target, timeout time.Duration, maxWorkers int) (*Prober, error) {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pool, err := ants.NewPool(maxWorkers)
	if err != nil {
		return nil, err
	}
	return &Prober{
		targets:  targets,
		timeout:  timeout,
		ingestor: ingestor,
		pool:     pool,
	}, nil
}

// RunOnce probes every target once and blocks until all reports are applied.
func (p *Prober) RunOnce() {
	var wg sync.WaitGroup
	for _, target := range p.targets {
		t := target
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			report := p.check(t)
			if err := p.ingestor.Submit(report); err != nil {
				zap.L().Warn("probe report rejected", zap.String("service", t.ID), zap.Error(err))
			}
		}); err != nil {
			wg.Done()
			zap.L().Warn("probe pool submit failed", zap.String("service", t.ID), zap.Error(err))
		}
	}
	wg.Wait()
}

// check performs one HTTP GET against a target health endpoint and
// classifies the result.
func (p *Prober) check(t Target) domain.HealthReport {
	start := time.Now()

	var code int
	err := gout.GET(t.URL).SetTimeout(p.timeout).Code(&code).Do()
	elapsed := float64(time.Since(start).Milliseconds())

	report := domain.HealthReport{
		ServiceID:    t.ID,
		ServiceName:  t.Name,
		ResponseTime: &elapsed,
	}
	switch {
	case err != nil:
		report.Status = domain.StatusError
		report.Error = err.Error()
	case code >= http.StatusOK && code < http.StatusMultipleChoices:
		report.Status = domain.StatusHealthy
	default:
		report.Status = domain.StatusUnhealthy
		report.Error = fmt.Sprintf("HTTP %d", code)
	}
	return report
}

// Release frees the worker pool.
func (p *Prober) Release() {
	p.pool.Release()
}
