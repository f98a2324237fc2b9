package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/subtag/pkg/domain/types"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	LogFormatText    = "text"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
	Output string

	closer io.Closer
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("SUBTAG_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json, text)",
			Value:       LogFormatConsole,
			Destination: &c.Format,
			Sources:     cli.EnvVars("SUBTAG_LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log destination, stdout, stderr or a file path",
			Value:       "stderr",
			Destination: &c.Output,
			Sources:     cli.EnvVars("SUBTAG_LOG_OUTPUT"),
		},
	}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.New("invalid log level", goerr.V("level", level), goerr.T(types.ErrTagInvalidConfig))
	}
}

func (c *Logger) writer() (io.Writer, error) {
	switch c.Output {
	case "", "stderr":
		return os.Stderr, nil
	case "-", "stdout":
		return os.Stdout, nil
	}

	f, err := os.OpenFile(c.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", c.Output), goerr.T(types.ErrTagInvalidConfig))
	}
	c.closer = f
	return f, nil
}

// Configure configures and returns a logger. Values tagged `masq:"secret"` and tokens are redacted.
func (c *Logger) Configure() (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	w, err := c.writer()
	if err != nil {
		return nil, err
	}

	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldPrefix("secret_"),
		masq.WithContain("ghp_"),
		masq.WithContain("github_pat_"),
		masq.WithContain("hooks.slack.com/"),
	)

	var handler slog.Handler
	switch c.Format {
	case "", LogFormatConsole:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
			clog.WithSource(level == slog.LevelDebug),
		)
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: filter})
	case LogFormatText:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: filter})
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", c.Format), goerr.T(types.ErrTagInvalidConfig))
	}

	return slog.New(handler), nil
}

// Close releases the log file if one was opened
func (c *Logger) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
