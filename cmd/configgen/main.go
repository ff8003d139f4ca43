// Command configgen writes the pipeline config template or validates an
// existing config file.
package main

import (
	"os"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
	"github.com/danmuck/fleetctl/internal/logging"
	"github.com/danmuck/fleetctl/internal/stage"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const defaultPath = "pipeline.toml"

func main() {
	os.Exit(run(os.Args[1:], logging.ConfigureRuntime()))
}

func run(argv []string, logger zerolog.Logger) int {
	var (
		output   string
		input    string
		validate bool
		force    bool
	)
	fs := pflag.NewFlagSet("configgen", pflag.ContinueOnError)
	fs.StringVar(&output, "output", defaultPath, "output path for the config template")
	fs.BoolVar(&validate, "validate", false, "validate an existing config file")
	fs.StringVar(&input, "input", defaultPath, "config path for validation")
	fs.BoolVar(&force, "force", false, "overwrite an existing config file")
	if err := cliargs.Parse(fs, argv); err != nil {
		return stage.Fail(logger, err)
	}

	if validate {
		if _, err := config.Load(input); err != nil {
			return stage.Fail(logger, err)
		}
		logger.Info().Msgf("Validated config at %s", input)
		return cliargs.ExitOK
	}

	if err := config.WriteTemplate(output, force); err != nil {
		return stage.Fail(logger, err)
	}
	logger.Info().Msgf("Wrote config template to %s", output)
	return cliargs.ExitOK
}
