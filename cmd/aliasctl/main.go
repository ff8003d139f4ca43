// Command aliasctl waits for every location of a fleet to become active and
// then routes an alias to that fleet.
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
		region string
	)
	fs := pflag.NewFlagSet("aliasctl", pflag.ContinueOnError)
	flags.Register(fs)
	fs.String("alias_id", "", "alias to repoint")
	fs.String("fleet_id", "", "fleet to wait for")
	fs.String("monitoring_interval", "", "seconds between status polls (config value when unset)")
	fs.String("timeout", "", "seconds before giving up (config value when unset)")
	fs.StringVar(&region, "aws_region", "", "region of the fleet and alias (CLI default when empty)")
	if err := cliargs.Parse(fs, argv); err != nil {
		return stage.Fail(deps.Logger, err)
	}

	env, err := stage.Open("aliasctl", flags, deps)
	if err != nil {
		return stage.Fail(deps.Logger, err)
	}

	req := fleet.DefaultUpdateRequest(env.Config.GameLift)
	req.Region = region
	pairs := cliargs.FromFlags(fs, "alias_id", "fleet_id", "monitoring_interval", "timeout")
	req.AliasID = pairs[0]
	req.FleetID = pairs[1]
	if pairs[2].Set {
		if req.Interval, err = cliargs.Int(pairs[2].Name, pairs[2].Value); err != nil {
			return env.Exit(err)
		}
	}
	if pairs[3].Set {
		if req.Timeout, err = cliargs.Int(pairs[3].Name, pairs[3].Value); err != nil {
			return env.Exit(err)
		}
	}

	updater := fleet.NewUpdater(env.Config, env.Invoker, env.Metrics).WithClock(env.Clock)
	return env.Exit(updater.Run(ctx, req))
}
