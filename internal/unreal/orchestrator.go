package unreal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
	"github.com/danmuck/fleetctl/internal/logging"
	"github.com/danmuck/fleetctl/internal/tools"
	"github.com/rs/zerolog"
)

// Orchestrator drives the engine CLI through editor, target and package
// builds for one project checkout.
type Orchestrator struct {
	project  string
	cfg      config.UnrealConfig
	workDir  string
	inv      *tools.Invoker
	archiver Archiver
	logger   zerolog.Logger
}

// NewOrchestrator builds an orchestrator rooted at workDir, where the
// .uproject file lives. The archiver follows cfg.Archiver.
func NewOrchestrator(project string, cfg config.UnrealConfig, workDir string, inv *tools.Invoker) *Orchestrator {
	var archiver Archiver = SevenZip{Invoker: inv, Binary: cfg.SevenZip}
	if cfg.Archiver == config.ArchiverZip {
		archiver = NativeZip{}
	}
	return &Orchestrator{
		project:  project,
		cfg:      cfg,
		workDir:  workDir,
		inv:      inv,
		archiver: archiver,
		logger:   inv.Logger(),
	}
}

// WithArchiver replaces the archiver chosen from config.
func (o *Orchestrator) WithArchiver(a Archiver) *Orchestrator {
	o.archiver = a
	return o
}

// DefaultOptions fills output directories and target platforms from config.
func (o *Orchestrator) DefaultOptions() Options {
	return Options{
		ClientTarget: o.cfg.Platform,
		ServerTarget: o.cfg.Platform,
		OutDir:       o.resolve(o.cfg.PackagedDir),
		ZipDir:       o.resolve(o.cfg.ZipDir),
	}
}

// UProjectPath is the absolute .uproject path passed to the packager.
func (o *Orchestrator) UProjectPath() string {
	return filepath.Join(o.workDir, o.project+".uproject")
}

func (o *Orchestrator) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(o.workDir, dir)
}

// Run executes the requested steps in order. The first failure ends the run.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	logging.Step(o.logger, "Validating Arguments")
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := cliargs.Required(o.logger, opts.Configuration); err != nil {
		return err
	}
	cliargs.LogArgs(o.logger, opts.pairs()...)

	logging.Step(o.logger, "Validating Tooling")
	if err := tools.Preflight(ctx, o.inv, o.cfg.CLI, "version"); err != nil {
		return err
	}

	configuration := opts.Configuration.Value
	if opts.PreReqs {
		if err := o.buildPreReqs(ctx, configuration); err != nil {
			return err
		}
	}

	if !opts.Packages() {
		return nil
	}

	logging.Step(o.logger, "Building Client/Server")
	logging.Step(o.logger, "Create output and zip directories")
	for _, dir := range []string{opts.ZipDir, opts.OutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if opts.Client {
		logging.Step(o.logger, "Build Client Target with configuration: "+configuration)
		if err := o.ue(ctx, "build", configuration, "Client"); err != nil {
			return err
		}
	}
	if opts.Server {
		logging.Step(o.logger, "Build Server Target with configuration: "+configuration)
		if err := o.ue(ctx, "build", configuration, "Server"); err != nil {
			return err
		}
	}

	logging.Step(o.logger, "Building, Cooking and Packaging Project")
	uat := append([]string{"uat"}, PackageArgs(o.cfg.Params, o.UProjectPath(), opts)...)
	if err := o.ue(ctx, uat...); err != nil {
		return err
	}

	logging.Step(o.logger, "Compressing results")
	archives, err := Compress(ctx, o.logger, o.archiver, opts.OutDir, opts.ZipDir)
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		o.logger.Warn().Msgf("no packaged output found under %s", opts.OutDir)
	}
	return nil
}

func (o *Orchestrator) buildPreReqs(ctx context.Context, configuration string) error {
	logging.Step(o.logger, "Building pre-reqs")
	logging.Step(o.logger, "Building Unreal Engine")
	if err := o.ue(ctx, "build-target", "UnrealEditor"); err != nil {
		return err
	}

	logging.Step(o.logger, "Building Engine components")
	for _, target := range o.cfg.EngineTargets {
		if err := o.ue(ctx, "build-target", target, configuration); err != nil {
			return err
		}
	}

	logging.Step(o.logger, "Building project Development Editor")
	return o.ue(ctx, "build", "Development", "Editor")
}

func (o *Orchestrator) ue(ctx context.Context, args ...string) error {
	return o.inv.Stream(ctx, o.cfg.CLI, args...)
}
