// Command buildctl builds engine prerequisites, packages the client and
// server targets and zips the packaged output.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/logging"
	"github.com/danmuck/fleetctl/internal/stage"
	"github.com/danmuck/fleetctl/internal/tools"
	"github.com/danmuck/fleetctl/internal/unreal"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], stage.Deps{Logger: logging.ConfigureRuntime(), Runner: tools.ExecRunner{}})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, deps stage.Deps) int {
	var (
		flags        stage.Flags
		preReqs      bool
		client       bool
		server       bool
		clientTarget string
		serverTarget string
		projectDir   string
	)
	fs := pflag.NewFlagSet("buildctl", pflag.ContinueOnError)
	flags.Register(fs)
	fs.BoolVar(&preReqs, "pre_reqs", false, "build the editor and engine targets first")
	fs.BoolVar(&client, "client", false, "build and package the client target")
	fs.BoolVar(&server, "server", false, "build and package the server target")
	fs.StringVar(&clientTarget, "client_target", "", "client target platform (config platform when empty)")
	fs.StringVar(&serverTarget, "server_target", "", "server target platform (config platform when empty)")
	fs.String("configuration", "", "build configuration: Debug|DebugGame|Development|Shipping|Test")
	fs.String("maps", "", "maps to cook, '+' separated")
	fs.StringVar(&projectDir, "project_dir", ".", "directory holding the .uproject file")
	if err := cliargs.Parse(fs, argv); err != nil {
		return stage.Fail(deps.Logger, err)
	}

	env, err := stage.Open("buildctl", flags, deps)
	if err != nil {
		return stage.Fail(deps.Logger, err)
	}

	workDir, err := filepath.Abs(projectDir)
	if err != nil {
		return env.Exit(err)
	}
	orchestrator := unreal.NewOrchestrator(env.Config.ProjectName, env.Config.Unreal, workDir, env.Invoker)

	opts := orchestrator.DefaultOptions()
	opts.PreReqs = preReqs
	opts.Client = client
	opts.Server = server
	if clientTarget != "" {
		opts.ClientTarget = clientTarget
	}
	if serverTarget != "" {
		opts.ServerTarget = serverTarget
	}
	pairs := cliargs.FromFlags(fs, "configuration", "maps")
	opts.Configuration = pairs[0]
	opts.Maps = pairs[1]

	return env.Exit(orchestrator.Run(ctx, opts))
}
