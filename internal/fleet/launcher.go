// Package fleet runs the hosting-service stages of the pipeline: creating a
// fleet from a packaged build, and repointing an alias once that fleet is up.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
	"github.com/danmuck/fleetctl/internal/gamelift"
	"github.com/danmuck/fleetctl/internal/logging"
	"github.com/danmuck/fleetctl/internal/observability"
	"github.com/danmuck/fleetctl/internal/poll"
	"github.com/danmuck/fleetctl/internal/results"
	"github.com/danmuck/fleetctl/internal/tools"
	"github.com/rs/zerolog"
)

// LaunchRequest carries the launcher flags. Every field is required.
type LaunchRequest struct {
	BuildName       cliargs.Pair
	BuildVersion    cliargs.Pair
	BuildPath       cliargs.Pair
	BuildSDKVersion cliargs.Pair
	FleetName       cliargs.Pair
	AWSRegion       cliargs.Pair
}

func (r LaunchRequest) pairs() []cliargs.Pair {
	return []cliargs.Pair{r.BuildName, r.BuildVersion, r.BuildPath, r.BuildSDKVersion, r.FleetName, r.AWSRegion}
}

// Launcher uploads a server build, waits for it to become ready and creates
// a fleet from it.
type Launcher struct {
	cfg     config.Config
	client  *gamelift.Client
	clock   poll.Clock
	metrics *observability.Recorder
	logger  zerolog.Logger
	idFile  string
}

func NewLauncher(cfg config.Config, inv *tools.Invoker, metrics *observability.Recorder) *Launcher {
	return &Launcher{
		cfg:     cfg,
		client:  gamelift.NewClient(inv, cfg.GameLift.CLI),
		clock:   poll.RealClock{},
		metrics: metrics,
		logger:  inv.Logger(),
		idFile:  cfg.GameLift.FleetIDFile,
	}
}

// WithClock replaces the clock used while waiting for the build.
func (l *Launcher) WithClock(c poll.Clock) *Launcher {
	l.clock = c
	return l
}

// WithFleetIDFile overrides where the fleet id is written.
func (l *Launcher) WithFleetIDFile(path string) *Launcher {
	l.idFile = path
	return l
}

// Run returns the created fleet id after writing it to the fleet id file.
func (l *Launcher) Run(ctx context.Context, req LaunchRequest) (string, error) {
	if err := l.client.Version(ctx); err != nil {
		return "", err
	}
	if err := cliargs.Required(l.logger, req.pairs()...); err != nil {
		return "", err
	}

	gl := l.cfg.GameLift
	client := l.client.InRegion(req.AWSRegion.Value)

	launchPath, err := gamelift.LaunchPath(l.cfg.ProjectName, req.BuildPath.Value)
	if err != nil {
		return "", err
	}
	l.logger.Info().Msgf("Launch path: %s", launchPath)

	buildID, err := client.UploadBuild(ctx, gamelift.Upload{
		Name:            req.BuildName.Value,
		Version:         req.BuildVersion.Value,
		Root:            req.BuildPath.Value,
		OperatingSystem: gl.OperatingSystem,
		SDKVersion:      req.BuildSDKVersion.Value,
	})
	if err != nil {
		return "", err
	}
	l.logger.Info().Msgf("Uploaded Build to GameLift: %s", buildID)

	loop := poll.Loop{
		Stage:    "build",
		Interval: time.Duration(gl.BuildPollIntervalSeconds) * time.Second,
		Timeout:  time.Duration(gl.BuildTimeoutSeconds) * time.Second,
		Clock:    l.clock,
		Logger:   l.logger,
		Metrics:  l.metrics,
	}
	err = loop.Run(ctx, func(ctx context.Context) (poll.Status, error) {
		status, err := client.BuildStatus(ctx, buildID)
		if err != nil {
			return poll.Pending, err
		}
		switch status {
		case gamelift.BuildReady:
			return poll.Succeeded, nil
		case gamelift.BuildError:
			l.logger.Error().Msg("Build Uploaded with status: ERROR")
			return poll.Failed, nil
		}
		l.logger.Info().Msgf("Waiting for Build to be Ready. Status: %s", status)
		return poll.Pending, nil
	})
	if err != nil {
		return "", fmt.Errorf("build %s: %w", buildID, err)
	}

	fleetID, err := client.CreateFleet(ctx, gamelift.FleetSpec{
		Name:        req.FleetName.Value,
		BuildID:     buildID,
		LaunchPath:  launchPath,
		Project:     l.cfg.ProjectName,
		Environment: gl.Environment,
		Fleet:       gl.Fleet,
	})
	if err != nil {
		return "", err
	}

	logging.Step(l.logger, "Saving fleet id")
	if err := results.WriteFleetID(l.idFile, fleetID); err != nil {
		return fleetID, err
	}
	l.logger.Info().Msgf("Wrote fleet id %s to %s", fleetID, l.idFile)
	return fleetID, nil
}
