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
	"github.com/danmuck/fleetctl/internal/tools"
	"github.com/rs/zerolog"
)

// UpdateRequest carries the updater flags. Interval and Timeout are seconds;
// Region is optional.
type UpdateRequest struct {
	AliasID  cliargs.Pair
	FleetID  cliargs.Pair
	Region   string
	Interval int
	Timeout  int
}

// DefaultUpdateRequest fills the optional fields from config.
func DefaultUpdateRequest(cfg config.GameLiftConfig) UpdateRequest {
	return UpdateRequest{
		AliasID:  cliargs.Absent("alias_id"),
		FleetID:  cliargs.Absent("fleet_id"),
		Interval: cfg.MonitoringIntervalSeconds,
		Timeout:  cfg.MonitoringTimeoutSeconds,
	}
}

// Updater waits for every location of a fleet to become active, then routes
// an alias to it.
type Updater struct {
	client  *gamelift.Client
	clock   poll.Clock
	metrics *observability.Recorder
	logger  zerolog.Logger
}

func NewUpdater(cfg config.Config, inv *tools.Invoker, metrics *observability.Recorder) *Updater {
	return &Updater{
		client:  gamelift.NewClient(inv, cfg.GameLift.CLI),
		clock:   poll.RealClock{},
		metrics: metrics,
		logger:  inv.Logger(),
	}
}

func (u *Updater) WithClock(c poll.Clock) *Updater {
	u.clock = c
	return u
}

// Run returns ErrResourceStatus when any location errors and ErrTimeout when
// the fleet is not active in time. The alias is only touched on success.
func (u *Updater) Run(ctx context.Context, req UpdateRequest) error {
	if err := u.client.Version(ctx); err != nil {
		return err
	}
	if err := cliargs.Required(u.logger, req.AliasID, req.FleetID); err != nil {
		return err
	}
	if req.Interval <= 0 {
		return fmt.Errorf("%w: monitoring_interval must be positive", cliargs.ErrArgument)
	}

	client := u.client.InRegion(req.Region)
	fleetID := req.FleetID.Value
	aliasID := req.AliasID.Value

	u.logger.Info().Msgf("Fleet: %s", fleetID)
	u.logger.Info().Msgf("Alias: %s", aliasID)
	u.logger.Log().Msg(logging.Separator)

	loop := poll.Loop{
		Stage:    "fleet",
		Interval: time.Duration(req.Interval) * time.Second,
		Timeout:  time.Duration(req.Timeout) * time.Second,
		Clock:    u.clock,
		Logger:   u.logger,
		Metrics:  u.metrics,
	}
	err := loop.Run(ctx, func(ctx context.Context) (poll.Status, error) {
		states, err := client.LocationStatuses(ctx, fleetID)
		if err != nil {
			return poll.Pending, err
		}
		statuses := make([]string, 0, len(states))
		for _, s := range states {
			u.logger.Info().Msgf("Location: %s Status: %s", s.Location, s.Status)
			statuses = append(statuses, s.Status)
		}
		status := poll.Aggregate(statuses, gamelift.LocationActive, gamelift.LocationError)
		if status == poll.Failed {
			u.logger.Error().Msg("Fleet activation error!!!")
			return status, nil
		}
		u.logger.Log().Msg(logging.Separator)
		return status, nil
	})
	if err != nil {
		return fmt.Errorf("fleet %s: %w", fleetID, err)
	}

	return client.UpdateAlias(ctx, aliasID, fleetID)
}
