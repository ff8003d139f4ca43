package fleet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
	"github.com/danmuck/fleetctl/internal/observability"
	"github.com/danmuck/fleetctl/internal/poll"
	"github.com/danmuck/fleetctl/internal/testutil/fakerun"
	"github.com/danmuck/fleetctl/internal/testutil/testlog"
	"github.com/danmuck/fleetctl/internal/tools"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const pendingLocations = `{"LocationAttributes":[
	{"LocationState":{"Location":"eu-west-1","Status":"ACTIVE"}},
	{"LocationState":{"Location":"us-west-1","Status":"PENDING"}}
]}`

const activeLocations = `{"LocationAttributes":[
	{"LocationState":{"Location":"eu-west-1","Status":"ACTIVE"}},
	{"LocationState":{"Location":"us-west-1","Status":"ACTIVE"}}
]}`

const erroredLocations = `{"LocationAttributes":[
	{"LocationState":{"Location":"eu-west-1","Status":"PENDING"}},
	{"LocationState":{"Location":"us-west-1","Status":"ERROR"}}
]}`

func updateRequest(interval, timeout int) UpdateRequest {
	return UpdateRequest{
		AliasID:  cliargs.Value("alias_id", "alias-1"),
		FleetID:  cliargs.Value("fleet_id", "F1"),
		Interval: interval,
		Timeout:  timeout,
	}
}

func newUpdater(t *testing.T, runner *fakerun.Runner) (*Updater, *poll.FakeClock) {
	t.Helper()
	clock := &poll.FakeClock{}
	inv := tools.NewInvoker(runner, testlog.Start(t), nil)
	return NewUpdater(config.Defaults(), inv, nil).WithClock(clock), clock
}

func TestUpdaterTimesOutWithoutUpdatingAlias(t *testing.T) {
	runner := fakerun.New().On("aws gamelift describe-fleet-location-attributes",
		fakerun.OK(`{"LocationAttributes":[{"LocationState":{"Location":"eu-west-1","Status":"PENDING"}}]}`))
	u, clock := newUpdater(t, runner)

	err := u.Run(context.Background(), updateRequest(1, 2))
	if !errors.Is(err, cliargs.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if cliargs.ExitCode(err) != 2 {
		t.Fatalf("expected exit 2, got %d", cliargs.ExitCode(err))
	}
	if polls := runner.Count("aws gamelift describe-fleet-location-attributes --fleet-id F1"); polls == 0 || polls > 2 {
		t.Fatalf("expected at most 2 polls, got %d", polls)
	}
	if runner.Count("aws gamelift update-alias") != 0 {
		t.Fatalf("alias must not be updated on timeout: %v", runner.Lines())
	}
	if clock.Elapsed() > 3*time.Second {
		t.Fatalf("overran timeout by more than one interval: %s", clock.Elapsed())
	}
}

func TestUpdaterWaitsForEveryLocation(t *testing.T) {
	runner := fakerun.New().
		On("aws gamelift describe-fleet-location-attributes",
			fakerun.OK(pendingLocations), fakerun.OK(pendingLocations), fakerun.OK(activeLocations)).
		On("aws gamelift update-alias", fakerun.OK(`{"Alias":{"AliasId":"alias-1"}}`))
	u, clock := newUpdater(t, runner)

	if err := u.Run(context.Background(), updateRequest(60, 3600)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := len(clock.Sleeps()); got != 2 {
		t.Fatalf("expected 2 sleeps, got %d", got)
	}
	if clock.Sleeps()[0] != time.Minute {
		t.Fatalf("unexpected interval %s", clock.Sleeps()[0])
	}
	lines := runner.Lines()
	if last := lines[len(lines)-1]; last != `aws gamelift update-alias --alias-id alias-1 --routing-strategy {"Type":"SIMPLE","FleetId":"F1"}` {
		t.Fatalf("unexpected final call %q", last)
	}
}

func TestUpdaterZeroLocationsUpdatesAliasImmediately(t *testing.T) {
	runner := fakerun.New().
		On("aws gamelift describe-fleet-location-attributes", fakerun.OK(`{"LocationAttributes":[]}`)).
		On("aws gamelift update-alias", fakerun.OK(`{"Alias":{"AliasId":"alias-1"}}`))
	u, clock := newUpdater(t, runner)

	if err := u.Run(context.Background(), updateRequest(60, 180)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(clock.Sleeps()) != 0 {
		t.Fatalf("expected no sleeps, got %v", clock.Sleeps())
	}
	if runner.Count("aws gamelift update-alias") != 1 {
		t.Fatalf("expected one alias update: %v", runner.Lines())
	}
}

func TestUpdaterAbortsOnLocationError(t *testing.T) {
	runner := fakerun.New().On("aws gamelift describe-fleet-location-attributes", fakerun.OK(erroredLocations))
	u, clock := newUpdater(t, runner)

	err := u.Run(context.Background(), updateRequest(60, 3600))
	if !errors.Is(err, cliargs.ErrResourceStatus) {
		t.Fatalf("expected ErrResourceStatus, got %v", err)
	}
	if len(clock.Sleeps()) != 0 || runner.Count("aws gamelift update-alias") != 0 {
		t.Fatalf("expected immediate abort: %v", runner.Lines())
	}
}

func TestUpdaterMissingArgsBeforeAnyHostingCall(t *testing.T) {
	runner := fakerun.New()
	u, _ := newUpdater(t, runner)

	req := DefaultUpdateRequest(config.Defaults().GameLift)
	req.FleetID = cliargs.Value("fleet_id", "F1")
	err := u.Run(context.Background(), req)

	var missing *cliargs.MissingError
	if !errors.As(err, &missing) || len(missing.Names) != 1 || missing.Names[0] != "alias_id" {
		t.Fatalf("expected missing alias_id, got %v", err)
	}
	if lines := runner.Lines(); len(lines) != 1 || lines[0] != "aws --version" {
		t.Fatalf("only the preflight should run: %v", lines)
	}
}

func TestDefaultUpdateRequest(t *testing.T) {
	req := DefaultUpdateRequest(config.Defaults().GameLift)
	if req.Interval != 60 || req.Timeout != 3600 {
		t.Fatalf("unexpected defaults %+v", req)
	}
}

func launchRequest(buildPath string) LaunchRequest {
	return LaunchRequest{
		BuildName:       cliargs.Value("build_name", "Server"),
		BuildVersion:    cliargs.Value("build_version", "1.2.0"),
		BuildPath:       cliargs.Value("build_path", buildPath),
		BuildSDKVersion: cliargs.Value("build_sdk_version", "5.0.0"),
		FleetName:       cliargs.Value("fleet_name", "prod"),
		AWSRegion:       cliargs.Value("aws_region", "eu-west-1"),
	}
}

func packagedBuild(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "GameLiftTutorial", "Binaries", "Win64")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "GameLiftTutorialServer.exe"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func newLauncher(t *testing.T, runner *fakerun.Runner, metrics *observability.Recorder) (*Launcher, *poll.FakeClock, string) {
	t.Helper()
	clock := &poll.FakeClock{}
	idFile := filepath.Join(t.TempDir(), "fleetId.txt")
	inv := tools.NewInvoker(runner, testlog.Start(t), metrics)
	l := NewLauncher(config.Defaults(), inv, metrics).WithClock(clock).WithFleetIDFile(idFile)
	return l, clock, idFile
}

func TestLauncherCreatesFleetAndWritesID(t *testing.T) {
	runner := fakerun.New().
		On("aws gamelift upload-build", fakerun.OK("Uploading...\nBuild ID: build-42\n")).
		On("aws gamelift describe-build",
			fakerun.OK(`{"Build":{"Status":"INITIALIZED"}}`), fakerun.OK(`{"Build":{"Status":"READY"}}`)).
		On("aws gamelift create-fleet", fakerun.OK(`{"FleetAttributes":{"FleetId":"fleet-9"}}`))
	metrics := observability.NewRecorder("fleetctl-test")
	l, clock, idFile := newLauncher(t, runner, metrics)

	id, err := l.Run(context.Background(), launchRequest(packagedBuild(t)))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if id != "fleet-9" {
		t.Fatalf("unexpected fleet id %q", id)
	}
	got, err := os.ReadFile(idFile)
	if err != nil {
		t.Fatalf("read id file: %v", err)
	}
	if string(got) != "fleet-9" {
		t.Fatalf("unexpected id file content %q", got)
	}
	if len(clock.Sleeps()) != 1 || clock.Sleeps()[0] != time.Second {
		t.Fatalf("unexpected sleeps %v", clock.Sleeps())
	}
	if runner.Count("aws gamelift describe-build --build-id build-42 --region eu-west-1") != 2 {
		t.Fatalf("unexpected describe calls: %v", runner.Lines())
	}
	// One pending and one succeeded series.
	series, err := testutil.GatherAndCount(metrics.Registry(), "fleetctl_poll_ticks_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if series != 2 {
		t.Fatalf("expected 2 poll tick series, got %d", series)
	}
}

func TestLauncherBuildErrorIsFatal(t *testing.T) {
	runner := fakerun.New().
		On("aws gamelift upload-build", fakerun.OK("Build ID: build-42")).
		On("aws gamelift describe-build", fakerun.OK(`{"Build":{"Status":"ERROR"}}`))
	l, _, idFile := newLauncher(t, runner, nil)

	_, err := l.Run(context.Background(), launchRequest(packagedBuild(t)))
	if !errors.Is(err, cliargs.ErrResourceStatus) {
		t.Fatalf("expected ErrResourceStatus, got %v", err)
	}
	if runner.Count("aws gamelift create-fleet") != 0 {
		t.Fatalf("fleet created after build error")
	}
	if _, err := os.Stat(idFile); !os.IsNotExist(err) {
		t.Fatalf("id file should not exist: %v", err)
	}
}

func TestLauncherMissingArgsListsAll(t *testing.T) {
	runner := fakerun.New()
	l, _, _ := newLauncher(t, runner, nil)

	req := launchRequest("/tmp")
	req.FleetName = cliargs.Absent("fleet_name")
	req.AWSRegion = cliargs.Absent("aws_region")

	_, err := l.Run(context.Background(), req)
	var missing *cliargs.MissingError
	if !errors.As(err, &missing) || len(missing.Names) != 2 {
		t.Fatalf("expected two missing names, got %v", err)
	}
	if runner.Count("aws gamelift") != 0 {
		t.Fatalf("no hosting call expected: %v", runner.Lines())
	}
}

func TestLauncherToolUnavailable(t *testing.T) {
	runner := fakerun.New().On("aws --version", fakerun.Fail(127, ""))
	l, _, _ := newLauncher(t, runner, nil)

	if _, err := l.Run(context.Background(), launchRequest("/tmp")); !errors.Is(err, cliargs.ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
}
