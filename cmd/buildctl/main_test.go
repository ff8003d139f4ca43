package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/fleetctl/internal/stage"
	"github.com/danmuck/fleetctl/internal/testutil/fakerun"
	"github.com/danmuck/fleetctl/internal/testutil/testlog"
)

func TestRunRequiresMapsBeforeAnyCall(t *testing.T) {
	runner := fakerun.New()
	code := run(context.Background(),
		[]string{"--client", "--configuration", "Development", "--project_dir", t.TempDir()},
		stage.Deps{Logger: testlog.Start(t), Runner: runner})
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if len(runner.Lines()) != 0 {
		t.Fatalf("no calls expected: %v", runner.Lines())
	}
}

func TestRunNoActions(t *testing.T) {
	code := run(context.Background(), []string{"--configuration", "Shipping"}, stage.Deps{Logger: testlog.Start(t), Runner: fakerun.New()})
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestRunClientPackage(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "pipeline.toml")
	if err := os.WriteFile(config, []byte("[unreal]\narchiver = \"zip\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	runner := fakerun.New()

	code := run(context.Background(),
		[]string{"--client", "--configuration", "Development", "--maps", "Arena", "--client_target", "Linux", "--project_dir", dir, "--config", config},
		stage.Deps{Logger: testlog.Start(t), Runner: runner})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	var uat string
	for _, line := range runner.Lines() {
		if strings.HasPrefix(line, "ue4 uat ") {
			uat = line
		}
	}
	if !strings.Contains(uat, " -client -clienttargetplatform=Linux ") || strings.Contains(uat, "-noclient") {
		t.Fatalf("unexpected packaging call %q", uat)
	}
	if _, err := os.Stat(filepath.Join(dir, "Zips")); err != nil {
		t.Fatalf("zip dir not created: %v", err)
	}
}
