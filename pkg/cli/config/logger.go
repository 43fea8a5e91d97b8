package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

// Logger is the flag-backed logging configuration
type Logger struct {
	level  string
	format string
	output string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level [debug, info, warn, error]",
			Category:    "Logging",
			Value:       "info",
			Sources:     cli.EnvVars("DOORBELL_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [console, json]",
			Category:    "Logging",
			Value:       "console",
			Sources:     cli.EnvVars("DOORBELL_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output destination [-, stdout, stderr, or a file path]",
			Category:    "Logging",
			Value:       "-",
			Sources:     cli.EnvVars("DOORBELL_LOG_OUTPUT"),
			Destination: &x.output,
		},
	}
}

func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}

// Configure builds the default logger from the flags and returns a
// closer for the output destination
func (x *Logger) Configure() (func(), error) {
	var level slog.Level
	switch strings.ToLower(x.level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("unknown log level", goerr.V("level", x.level))
	}

	var format logging.Format
	switch strings.ToLower(x.format) {
	case "console":
		format = logging.FormatConsole
	case "json":
		format = logging.FormatJSON
	default:
		return nil, goerr.New("unknown log format", goerr.V("format", x.format))
	}

	closer := func() {}
	var w *os.File
	switch x.output {
	case "-", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(x.output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", x.output))
		}
		w = f
		closer = func() {
			_ = f.Close()
		}
	}

	logging.SetDefault(logging.New(w, level, format))
	return closer, nil
}
