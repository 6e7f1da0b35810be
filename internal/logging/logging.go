// Package logging configures the go-logger backend from the logging
// section of the config file. Components obtain named child loggers
// from the root logger.
package logging

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Logger is the logging contract components depend on.
type Logger = glog.Logger

// New builds the root logger for the given level and format. Unknown
// levels fall back to info, unknown formats to pretty console output.
func New(level, format string) *glog.BaseLogger {
	options := []glog.Option{
		glog.WithLevel(normalizeLevel(level)),
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	default:
		options = append(options, glog.WithLoggerTypePretty())
	}

	return glog.NewLogger(options...)
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	default:
		return glog.Info
	}
}
