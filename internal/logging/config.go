package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "FLEETCTL_LOG_LEVEL"
	EnvLogTimestamp = "FLEETCTL_LOG_TIMESTAMP"
	EnvLogNoColor   = "FLEETCTL_LOG_NOCOLOR"
	EnvLogJSON      = "FLEETCTL_LOG_JSON"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config controls how the process logger renders records.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	JSON      bool
	Out       io.Writer
}

var (
	configureOnce sync.Once
	configured    = zerolog.Nop()
)

func ConfigureRuntime() zerolog.Logger {
	return Configure(ProfileRuntime)
}

func ConfigureTests() zerolog.Logger {
	return Configure(ProfileTest)
}

// Configure builds the process logger once and installs it as the zerolog
// global. Later calls return the first logger regardless of profile.
func Configure(profile Profile) zerolog.Logger {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg, os.Getenv)
		configured = New(cfg)
		log.Logger = configured
	})
	return configured
}

// New returns a logger for cfg without touching process-wide state.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	var logger zerolog.Logger
	if cfg.JSON {
		logger = zerolog.New(out)
	} else {
		logger = zerolog.New(consoleWriter(out, cfg))
	}
	if cfg.Timestamp {
		logger = logger.With().Timestamp().Logger()
	}
	return logger.Level(cfg.Level)
}

// consoleWriter renders records as "INFO: message key=value", matching the
// severity-prefixed lines CI jobs grep for.
func consoleWriter(out io.Writer, cfg Config) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.NoColor,
		TimeFormat: time.RFC3339,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
	}
	if cfg.Timestamp {
		w.PartsOrder = []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName}
	}
	w.FormatLevel = formatLevel
	return w
}

func formatLevel(i interface{}) string {
	raw, ok := i.(string)
	if !ok || raw == "" {
		return ""
	}
	switch raw {
	case zerolog.LevelWarnValue:
		return "WARNING:"
	case zerolog.LevelTraceValue, zerolog.LevelDebugValue, zerolog.LevelInfoValue, zerolog.LevelErrorValue:
		return strings.ToUpper(raw) + ":"
	default:
		return fmt.Sprintf("%s:", strings.ToUpper(raw))
	}
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel}
	}
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if lvl, ok := parseLevel(getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(getenv(EnvLogJSON)); ok {
		cfg.JSON = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
