// Command fleetctl uploads a packaged server build to GameLift, waits for it
// to become ready and creates a fleet from it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/fleet"
	"github.com/danmuck/fleetctl/internal/logging"
	"github.com/danmuck/fleetctl/internal/stage"
	"github.com/danmuck/fleetctl/internal/tools"
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
		flags  stage.Flags
		idFile string
	)
	fs := pflag.NewFlagSet("fleetctl", pflag.ContinueOnError)
	flags.Register(fs)
	fs.String("build_name", "", "name of the uploaded build")
	fs.String("build_version", "", "version label of the uploaded build")
	fs.String("build_path", "", "packaged server directory to upload")
	fs.String("build_sdk_version", "", "server SDK version the build links against")
	fs.String("fleet_name", "", "name of the fleet to create")
	fs.String("aws_region", "", "home region for the build and fleet")
	fs.StringVar(&idFile, "fleet_id_file", "", "where to write the fleet id (config value when empty)")
	if err := cliargs.Parse(fs, argv); err != nil {
		return stage.Fail(deps.Logger, err)
	}

	env, err := stage.Open("fleetctl", flags, deps)
	if err != nil {
		return stage.Fail(deps.Logger, err)
	}

	launcher := fleet.NewLauncher(env.Config, env.Invoker, env.Metrics).WithClock(env.Clock)
	if idFile != "" {
		launcher.WithFleetIDFile(idFile)
	}

	pairs := cliargs.FromFlags(fs, "build_name", "build_version", "build_path", "build_sdk_version", "fleet_name", "aws_region")
	_, err = launcher.Run(ctx, fleet.LaunchRequest{
		BuildName:       pairs[0],
		BuildVersion:    pairs[1],
		BuildPath:       pairs[2],
		BuildSDKVersion: pairs[3],
		FleetName:       pairs[4],
		AWSRegion:       pairs[5],
	})
	return env.Exit(err)
}
