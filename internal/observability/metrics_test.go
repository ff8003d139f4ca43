package observability

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCountsCommandsAndTicks(t *testing.T) {
	r := NewRecorder("aliasctl")

	r.RecordCommand("aws", 2*time.Second, nil)
	r.RecordCommand("aws", time.Second, errors.New("exit 255"))
	r.RecordCommand("aws", time.Second, nil)
	r.RecordPollTick("fleet", "pending")
	r.RecordPollTick("fleet", "succeeded")

	if got := testutil.ToFloat64(r.commands.WithLabelValues("aws", "ok")); got != 2 {
		t.Fatalf("unexpected ok count: %v", got)
	}
	if got := testutil.ToFloat64(r.commands.WithLabelValues("aws", "error")); got != 1 {
		t.Fatalf("unexpected error count: %v", got)
	}
	if got := testutil.ToFloat64(r.pollTicks.WithLabelValues("fleet", "pending")); got != 1 {
		t.Fatalf("unexpected pending ticks: %v", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.RecordCommand("ue4", time.Second, nil)
	r.RecordPollTick("build", "pending")
	r.RecordRun("build", time.Second, nil)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil recorder write: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder("syncctl")
	r.RecordRun("upload", 3*time.Second, nil)

	path := filepath.Join(t.TempDir(), "syncctl.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `fleetctl_stage_runs_total{app="syncctl",outcome="ok",stage="upload"} 1`) {
		t.Fatalf("missing run counter: %s", out)
	}
	if !strings.Contains(out, "fleetctl_stage_last_run_duration_seconds") {
		t.Fatalf("missing duration gauge: %s", out)
	}
}
