package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"

	"github.com/mcpstack/monitord/internal/probe"
)

// SysConfig holds process-level settings.
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
}

// WebConfig holds the HTTP listener settings.
type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// MonitorConfig holds the sampler, history, log sink and probe settings.
// Interval and timeout values are whole seconds.
type MonitorConfig struct {
	SampleInterval  int            `yaml:"sample_interval" json:"sample_interval"`
	HistoryCapacity int            `yaml:"history_capacity" json:"history_capacity"`
	HistoryWindow   int            `yaml:"history_window" json:"history_window"`
	LogDir          string         `yaml:"log_dir" json:"log_dir"`
	ProbeInterval   int            `yaml:"probe_interval" json:"probe_interval"`
	ProbeTimeout    int            `yaml:"probe_timeout" json:"probe_timeout"`
	ProbeWorkers    int            `yaml:"probe_workers" json:"probe_workers"`
	Targets         []probe.Target `yaml:"targets" json:"targets"`
}

// LogConfig holds zap logger settings.
type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// AppConfig is the full application configuration.
type AppConfig struct {
	System  SysConfig     `yaml:"system" json:"system"`
	Web     WebConfig     `yaml:"web" json:"web"`
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`
	Logger  LogConfig     `yaml:"logger" json:"logger"`
}

// DefaultAppConfig carries the defaults used when no config file is given.
var DefaultAppConfig = AppConfig{
	System: SysConfig{
		Appid:    "monitord",
		Location: "UTC",
		Workdir:  "/var/monitord",
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 8080,
	},
	Monitor: MonitorConfig{
		SampleInterval:  30,
		HistoryCapacity: 100,
		HistoryWindow:   20,
		LogDir:          "/var/monitord/logs",
		ProbeInterval:   30,
		ProbeTimeout:    5,
		ProbeWorkers:    10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/monitord/monitord.log",
	},
}

// LoadConfig reads the YAML config file when present, fills unset values
// with defaults, and applies environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	def := DefaultAppConfig
	if cfg.System.Appid == "" {
		cfg.System.Appid = def.System.Appid
	}
	if cfg.System.Location == "" {
		cfg.System.Location = def.System.Location
	}
	if cfg.System.Workdir == "" {
		cfg.System.Workdir = def.System.Workdir
	}
	if cfg.Web.Host == "" {
		cfg.Web.Host = def.Web.Host
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = def.Web.Port
	}
	if cfg.Monitor.SampleInterval <= 0 {
		cfg.Monitor.SampleInterval = def.Monitor.SampleInterval
	}
	if cfg.Monitor.HistoryCapacity <= 0 {
		cfg.Monitor.HistoryCapacity = def.Monitor.HistoryCapacity
	}
	if cfg.Monitor.HistoryWindow <= 0 {
		cfg.Monitor.HistoryWindow = def.Monitor.HistoryWindow
	}
	if cfg.Monitor.LogDir == "" {
		cfg.Monitor.LogDir = def.Monitor.LogDir
	}
	if cfg.Monitor.ProbeInterval <= 0 {
		cfg.Monitor.ProbeInterval = def.Monitor.ProbeInterval
	}
	if cfg.Monitor.ProbeTimeout <= 0 {
		cfg.Monitor.ProbeTimeout = def.Monitor.ProbeTimeout
	}
	if cfg.Monitor.ProbeWorkers <= 0 {
		cfg.Monitor.ProbeWorkers = def.Monitor.ProbeWorkers
	}
	if cfg.Logger.Mode == "" {
		cfg.Logger.Mode = def.Logger.Mode
	}
	if cfg.Logger.Filename == "" {
		cfg.Logger.Filename = def.Logger.Filename
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("PORT"); v != "" {
		if port := cast.ToInt(v); port > 0 {
			cfg.Web.Port = port
		}
	}
	if v := os.Getenv("MONITORD_WORKDIR"); v != "" {
		cfg.System.Workdir = v
	}
	if v := os.Getenv("MONITORD_LOG_DIR"); v != "" {
		cfg.Monitor.LogDir = v
	}
}
