package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mcpstack/monitord/config"
	"github.com/mcpstack/monitord/internal/ingest"
	"github.com/mcpstack/monitord/internal/logsink"
	"github.com/mcpstack/monitord/internal/probe"
	"github.com/mcpstack/monitord/internal/store"
	"github.com/mcpstack/monitord/pkg/metrics"
)

// Application aggregates the monitoring service's components and owns their
// lifecycle: the metrics store, the ingestor, the log sink, the prober, and
// the cron scheduler driving the periodic sampler.
type Application struct {
	appConfig *config.AppConfig
	sched     *cron.Cron
	mstore    *store.Store
	ingestor  *ingest.Ingestor
	sink      *logsink.Sink
	prober    *probe.Prober
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

// Store returns the metrics store.
func (a *Application) Store() *store.Store {
	return a.mstore
}

// Ingestor returns the health report ingestor.
func (a *Application) Ingestor() *ingest.Ingestor {
	return a.ingestor
}

// Sink returns the log sink.
func (a *Application) Sink() *logsink.Sink {
	return a.sink
}

// Scheduler returns the cron scheduler.
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Init builds the logger and every component. It must be called once before
// StartBackgroundJobs.
func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	// Initialize the latency archive with the workdir convention.
	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics archive:", err)
	}

	a.mstore = store.NewWithCapacity(cfg.Monitor.HistoryCapacity)
	a.ingestor = ingest.New(a.mstore)

	a.sink, err = logsink.New(cfg.Monitor.LogDir)
	if err != nil {
		return err
	}
	if err := a.sink.SubscribeReports(a.mstore.Bus()); err != nil {
		return err
	}

	a.prober, err = probe.New(a.ingestor, cfg.Monitor.Targets,
		time.Duration(cfg.Monitor.ProbeTimeout)*time.Second, cfg.Monitor.ProbeWorkers)
	if err != nil {
		return err
	}

	return a.initJob()
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

// StartBackgroundJobs starts the cron scheduler.
func (a *Application) StartBackgroundJobs() {
	a.sched.Start()
}

// Release stops the scheduler before anything else so no tick runs against
// closed components, then shuts the remaining resources down.
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.prober != nil {
		a.prober.Release()
	}
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			zap.L().Warn("log sink close failed", zap.Error(err))
		}
	}
	_ = metrics.Close()
	_ = zap.L().Sync()
}
