package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fleetctl"

// Recorder holds the per-run metrics of one stage binary. Each process owns
// its registry, so results can be dumped to a node_exporter textfile when the
// run ends. A nil Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	pollTicks       *prometheus.CounterVec
	runs            *prometheus.CounterVec
	runDuration     *prometheus.GaugeVec
}

func NewRecorder(app string) *Recorder {
	labels := prometheus.Labels{"app": app}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "command",
				Name:        "invocations_total",
				Help:        "External command invocations by program and outcome.",
				ConstLabels: labels,
			},
			[]string{"program", "outcome"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "command",
				Name:        "duration_seconds",
				Help:        "External command wall time in seconds.",
				Buckets:     []float64{0.5, 1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
				ConstLabels: labels,
			},
			[]string{"program"},
		),
		pollTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "poll",
				Name:        "ticks_total",
				Help:        "Status polls by stage and observed status.",
				ConstLabels: labels,
			},
			[]string{"stage", "status"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "stage",
				Name:        "runs_total",
				Help:        "Stage runs by outcome.",
				ConstLabels: labels,
			},
			[]string{"stage", "outcome"},
		),
		runDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "stage",
				Name:        "last_run_duration_seconds",
				Help:        "Duration of the last stage run in seconds.",
				ConstLabels: labels,
			},
			[]string{"stage"},
		),
	}
	r.registry.MustRegister(r.commands, r.commandDuration, r.pollTicks, r.runs, r.runDuration)
	return r
}

func (r *Recorder) RecordCommand(program string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(program, outcome(err)).Inc()
	r.commandDuration.WithLabelValues(program).Observe(duration.Seconds())
}

func (r *Recorder) RecordPollTick(stage, status string) {
	if r == nil {
		return
	}
	r.pollTicks.WithLabelValues(stage, status).Inc()
}

func (r *Recorder) RecordRun(stage string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(stage, outcome(err)).Inc()
	r.runDuration.WithLabelValues(stage).Set(duration.Seconds())
}

// Registry exposes the underlying gatherer.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile dumps the registry in the Prometheus text format. An empty
// path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
