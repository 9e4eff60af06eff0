package app

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// newScheduler builds the cron instance used for all periodic jobs. Jobs
// that are still running when their next tick fires are skipped, not
// queued, so there is no catch-up backlog after a slow run.
func newScheduler() *cron.Cron {
	return cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{}),
	))
}

// cronLogger adapts the global zap logger to cron's Logger interface.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw(fmt.Sprintf("cron: %s", msg), append(keysAndValues, "error", err)...)
}
