// Package stage holds the start-up and exit plumbing shared by the pipeline
// binaries.
package stage

import (
	"time"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
	"github.com/danmuck/fleetctl/internal/observability"
	"github.com/danmuck/fleetctl/internal/poll"
	"github.com/danmuck/fleetctl/internal/tools"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// Flags are accepted by every binary.
type Flags struct {
	ConfigPath  string
	MetricsFile string
}

func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "pipeline config TOML; built-in defaults when empty")
	fs.StringVar(&f.MetricsFile, "metrics_file", "", "write Prometheus text metrics to this path on exit")
}

// Deps are the process-level collaborators a binary is started with.
type Deps struct {
	Logger zerolog.Logger
	Runner tools.CommandRunner
	Clock  poll.Clock
}

// Env is one running stage.
type Env struct {
	Name    string
	Config  config.Config
	Logger  zerolog.Logger
	Metrics *observability.Recorder
	Invoker *tools.Invoker
	Clock   poll.Clock

	metricsFile string
	start       time.Time
}

// Open loads the config and wires the invoker and metrics for a stage.
func Open(name string, flags Flags, deps Deps) (*Env, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.ConfigPath != "" {
		deps.Logger.Info().Msgf("Loaded config %s", flags.ConfigPath)
	}
	clock := deps.Clock
	if clock == nil {
		clock = poll.RealClock{}
	}
	metrics := observability.NewRecorder(name)
	return &Env{
		Name:        name,
		Config:      cfg,
		Logger:      deps.Logger,
		Metrics:     metrics,
		Invoker:     tools.NewInvoker(deps.Runner, deps.Logger, metrics),
		Clock:       clock,
		metricsFile: flags.MetricsFile,
		start:       time.Now(),
	}, nil
}

// Exit records the run outcome, flushes metrics and maps err to an exit
// status. The error is logged here and nowhere else.
func (e *Env) Exit(err error) int {
	e.Metrics.RecordRun(e.Name, time.Since(e.start), err)
	if e.metricsFile != "" {
		if werr := e.Metrics.WriteTextfile(e.metricsFile); werr != nil {
			e.Logger.Warn().Msgf("metrics not written: %v", werr)
		}
	}
	return Fail(e.Logger, err)
}

// Fail logs err, if any, and returns its exit status.
func Fail(logger zerolog.Logger, err error) int {
	if err != nil {
		logger.Error().Msg(err.Error())
	}
	return cliargs.ExitCode(err)
}
