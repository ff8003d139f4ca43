package unreal

import (
	"fmt"

	"github.com/danmuck/fleetctl/internal/cliargs"
)

// Configurations are the build configurations the engine accepts.
var Configurations = []string{"Debug", "DebugGame", "Development", "Shipping", "Test"}

// Options selects which build steps run. Configuration and Maps keep the
// distinction between absent and empty.
type Options struct {
	PreReqs       bool
	Client        bool
	Server        bool
	ClientTarget  string
	ServerTarget  string
	Configuration cliargs.Pair
	Maps          cliargs.Pair
	OutDir        string
	ZipDir        string
}

// Validate fails fast, before any external call, on requests that cannot run.
func (o Options) Validate() error {
	if o.Configuration.Set {
		if err := cliargs.OneOf("configuration", o.Configuration.Value, Configurations); err != nil {
			return err
		}
	}
	if !o.PreReqs && !o.Client && !o.Server {
		return fmt.Errorf("%w: no actions to take based on passed arguments", cliargs.ErrArgument)
	}
	if (o.Client || o.Server) && !o.Maps.Set {
		return fmt.Errorf("%w: maps to build were not provided", cliargs.ErrArgument)
	}
	return nil
}

// Packages reports whether a client or server build was requested.
func (o Options) Packages() bool {
	return o.Client || o.Server
}

func (o Options) pairs() []cliargs.Pair {
	return []cliargs.Pair{
		cliargs.Value("pre_reqs", fmt.Sprint(o.PreReqs)),
		cliargs.Value("client", fmt.Sprint(o.Client)),
		cliargs.Value("server", fmt.Sprint(o.Server)),
		o.Maps,
		cliargs.Value("client_target", o.ClientTarget),
		cliargs.Value("server_target", o.ServerTarget),
		o.Configuration,
		cliargs.Value("out_dir", o.OutDir),
		cliargs.Value("zip_dir", o.ZipDir),
	}
}

// PackageArgs assembles the BuildCookRun flag list. Client and -noclient are
// mutually exclusive.
func PackageArgs(params []string, uproject string, o Options) []string {
	args := append([]string(nil), params...)
	args = append(args,
		"-project="+uproject,
		"-map="+o.Maps.Value,
		"-configuration="+o.Configuration.Value,
	)
	if o.Client {
		args = append(args, "-client", "-clienttargetplatform="+o.ClientTarget)
	} else {
		args = append(args, "-noclient")
	}
	if o.Server {
		args = append(args, "-server", "-servertargetplatform="+o.ServerTarget)
	}
	return append(args, "-archivedirectory="+o.OutDir)
}
