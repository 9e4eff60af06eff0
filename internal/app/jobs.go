package app

import (
	"fmt"

	"go.uber.org/zap"
)

// initJob registers the periodic jobs: the sampler tick that makes history
// accrue even with no readers, and the target prober when any targets are
// configured. A failed tick is logged and skipped, never queued or retried.
func (a *Application) initJob() error {
	a.sched = newScheduler()

	samplerSpec := fmt.Sprintf("@every %ds", a.appConfig.Monitor.SampleInterval)
	if _, err := a.sched.AddFunc(samplerSpec, a.safeTick("sampler", func() {
		sample := a.mstore.Sample()
		zap.L().Debug("sampler tick",
			zap.Int("serverCount", sample.ServerCount),
			zap.Int("healthyCount", sample.HealthyCount))
	})); err != nil {
		return err
	}

	if len(a.appConfig.Monitor.Targets) > 0 {
		probeSpec := fmt.Sprintf("@every %ds", a.appConfig.Monitor.ProbeInterval)
		if _, err := a.sched.AddFunc(probeSpec, a.safeTick("probe", func() {
			a.prober.RunOnce()
		})); err != nil {
			return err
		}
	}

	return nil
}

// safeTick recovers panics from a single tick so one bad run never kills
// the cron entry.
func (a *Application) safeTick(name string, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("scheduled job panicked", zap.String("job", name), zap.Any("panic", r))
			}
		}()
		fn()
	}
}
