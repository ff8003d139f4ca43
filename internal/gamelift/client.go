// Package gamelift wraps the hosting-service subcommands of the cloud CLI.
package gamelift

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/tools"
)

// Build and location states reported by the hosting service.
const (
	BuildReady = "READY"
	BuildError = "ERROR"

	LocationActive = "ACTIVE"
	LocationError  = "ERROR"
)

// Client issues `<cli> gamelift ...` calls through an Invoker. A non-empty
// region is appended to every hosting call.
type Client struct {
	inv    *tools.Invoker
	cli    string
	region string
}

func NewClient(inv *tools.Invoker, cli string) *Client {
	if cli == "" {
		cli = "aws"
	}
	return &Client{inv: inv, cli: cli}
}

// InRegion returns a copy of c that targets region.
func (c *Client) InRegion(region string) *Client {
	next := *c
	next.region = region
	return &next
}

func (c *Client) Region() string {
	return c.region
}

// Version is the preflight probe for the cloud CLI.
func (c *Client) Version(ctx context.Context) error {
	if err := tools.Preflight(ctx, c.inv, c.cli, "--version"); err != nil {
		return fmt.Errorf("%w (Issue calling AWS cli)", err)
	}
	return nil
}

func (c *Client) args(subcommand string, args ...string) []string {
	out := append([]string{"gamelift", subcommand}, args...)
	if c.region != "" {
		out = append(out, "--region", c.region)
	}
	return out
}

func (c *Client) callLine(ctx context.Context, subcommand string, args ...string) (string, error) {
	stdout, err := c.inv.Call(ctx, c.cli, c.args(subcommand, args...)...)
	if err != nil {
		return "", err
	}
	return tools.LastLine(stdout), nil
}

func (c *Client) callJSON(ctx context.Context, v any, subcommand string, args ...string) error {
	stdout, err := c.inv.Call(ctx, c.cli, c.args(subcommand, args...)...)
	if err != nil {
		return err
	}
	if err := tools.DecodeJSON(stdout, v); err != nil {
		return fmt.Errorf("gamelift %s: %w", subcommand, err)
	}
	return nil
}

// Upload describes one build artifact handed to upload-build.
type Upload struct {
	Name            string
	Version         string
	Root            string
	OperatingSystem string
	SDKVersion      string
}

// UploadBuild uploads the build root and returns the new build id.
func (c *Client) UploadBuild(ctx context.Context, u Upload) (string, error) {
	line, err := c.callLine(ctx, "upload-build",
		"--name", u.Name,
		"--build-version", u.Version,
		"--build-root", u.Root,
		"--operating-system", u.OperatingSystem,
		"--server-sdk-version", u.SDKVersion,
	)
	if err != nil {
		return "", err
	}
	return ExtractBuildID(line)
}

type describeBuildOutput struct {
	Build struct {
		BuildID string `json:"BuildId"`
		Status  string `json:"Status"`
	} `json:"Build"`
}

// BuildStatus returns Build.Status from describe-build.
func (c *Client) BuildStatus(ctx context.Context, buildID string) (string, error) {
	var out describeBuildOutput
	if err := c.callJSON(ctx, &out, "describe-build", "--build-id", buildID); err != nil {
		return "", err
	}
	if out.Build.Status == "" {
		return "", fmt.Errorf("%w: describe-build returned no status for %s", cliargs.ErrCommandFailed, buildID)
	}
	return out.Build.Status, nil
}

type createFleetOutput struct {
	FleetAttributes struct {
		FleetID string `json:"FleetId"`
		Name    string `json:"Name"`
		Status  string `json:"Status"`
	} `json:"FleetAttributes"`
}

// CreateFleet creates the fleet described by spec and returns its id.
func (c *Client) CreateFleet(ctx context.Context, spec FleetSpec) (string, error) {
	args, err := spec.Args()
	if err != nil {
		return "", err
	}
	var out createFleetOutput
	if err := c.callJSON(ctx, &out, "create-fleet", args...); err != nil {
		return "", err
	}
	if out.FleetAttributes.FleetID == "" {
		return "", fmt.Errorf("%w: create-fleet returned no fleet id", cliargs.ErrCommandFailed)
	}
	logger := c.inv.Logger()
	logger.Info().Msgf("Created Fleet: %s (%s)", out.FleetAttributes.FleetID, out.FleetAttributes.Status)
	return out.FleetAttributes.FleetID, nil
}

// LocationState is one region of a multi-location fleet.
type LocationState struct {
	Location string `json:"Location"`
	Status   string `json:"Status"`
}

type locationAttributesOutput struct {
	LocationAttributes []struct {
		LocationState LocationState `json:"LocationState"`
	} `json:"LocationAttributes"`
}

// LocationStatuses returns the per-region activation state of a fleet.
func (c *Client) LocationStatuses(ctx context.Context, fleetID string) ([]LocationState, error) {
	var out locationAttributesOutput
	if err := c.callJSON(ctx, &out, "describe-fleet-location-attributes", "--fleet-id", fleetID); err != nil {
		return nil, err
	}
	states := make([]LocationState, 0, len(out.LocationAttributes))
	for _, attr := range out.LocationAttributes {
		states = append(states, attr.LocationState)
	}
	return states, nil
}

type routingStrategy struct {
	Type    string `json:"Type"`
	FleetID string `json:"FleetId"`
}

// UpdateAlias points aliasID at fleetID with a SIMPLE routing strategy.
func (c *Client) UpdateAlias(ctx context.Context, aliasID, fleetID string) error {
	strategy, err := json.Marshal(routingStrategy{Type: "SIMPLE", FleetID: fleetID})
	if err != nil {
		return err
	}
	stdout, err := c.inv.Call(ctx, c.cli, c.args("update-alias",
		"--alias-id", aliasID,
		"--routing-strategy", string(strategy),
	)...)
	if err != nil {
		return err
	}
	var out struct {
		Alias struct {
			AliasID string `json:"AliasId"`
			Name    string `json:"Name"`
		} `json:"Alias"`
	}
	if err := tools.DecodeJSON(stdout, &out); err != nil {
		return fmt.Errorf("gamelift update-alias: %w", err)
	}
	logger := c.inv.Logger()
	logger.Info().Msgf("Alias updated: %s -> %s", aliasID, fleetID)
	return nil
}
