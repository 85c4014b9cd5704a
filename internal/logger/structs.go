package logger

import (
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
)

// Console configures logging to stdout/stderr, the default in containers
// and during development.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool
}

// LogFile configures rolling file logging, one file per level, for
// installations without a log collector.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	AccessLog        string `toml:"access"`
	AccessMaxSize    int    `toml:"accessMaxSize"`
	AccessMaxBackups int    `toml:"accessMaxBackups"`
	AccessMaxAge     int    `toml:"accessMaxAge"`

	ErrorLog        string `toml:"error"`
	ErrorMaxSize    int    `toml:"errorMaxSize"`
	ErrorMaxBackups int    `toml:"errorMaxBackups"`
	ErrorMaxAge     int    `toml:"errorMaxAge"`

	InfoLog        string `toml:"info"`
	InfoMaxSize    int    `toml:"infoMaxSize"`
	InfoMaxBackups int    `toml:"infoMaxBackups"`
	InfoMaxAge     int    `toml:"infoMaxAge"`

	TraceLog        string `toml:"trace"`
	TraceMaxSize    int    `toml:"traceMaxSize"`
	TraceMaxBackups int    `toml:"traceMaxBackups"`
	TraceMaxAge     int    `toml:"traceMaxAge"`

	WarnLog        string `toml:"warn"`
	WarnMaxSize    int    `toml:"warnMaxSize"`
	WarnMaxBackups int    `toml:"warnMaxBackups"`
	WarnMaxAge     int    `toml:"warnMaxAge"`
}

// DataDog configures shipping log entries to the DataDog logs intake.
type DataDog struct {
	ServiceName string `toml:"serviceName"`
	APIKey      string `toml:"apiKey"` // API key created at datadog
	Enabled     bool   `toml:"enabled"`
	Site        string `toml:"site"` // regional site aka DD_SITE ("datadoghq.eu")
	SecretName  string `toml:"secretname"`

	// Servers overrides the intake endpoints, mainly for proxies.
	Servers datadog.ServerConfigurations `toml:"servers"`

	// Timeout bounds one batch submission, 10s when unset.
	Timeout time.Duration `toml:"timeout"`
}

// LogZio configures shipping log entries to logz.io.
type LogZio struct {
	Enabled    bool `toml:"enabled"`
	Debug      bool `toml:"debug"`
	URL        string
	SecretName string
	Token      string
}

// Log is the logging section of the application configuration.
type Log struct {
	LogLevel string // trace, debug, info, warn, error
	LogEnv   string

	// EnableAccessLogToConsole adds web access log entries to the console
	// output. Console.Enabled still decides whether console output exists
	// at all.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive probes

	AppName     string
	ServiceName string

	Console Console
	File    LogFile `toml:"file"`
	LogZio  LogZio
	DataDog DataDog
}
