package gamelift

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
)

// ExtractBuildID reads the build id from the summary line upload-build
// prints last, e.g. "Build ID: build-1111". The id is the trimmed text after
// the right-most colon.
func ExtractBuildID(line string) (string, error) {
	idx := strings.LastIndex(line, ":")
	if idx < 0 {
		return "", fmt.Errorf("%w: no build id in upload output %q", cliargs.ErrCommandFailed, line)
	}
	id := strings.TrimSpace(line[idx+1:])
	if id == "" {
		return "", fmt.Errorf("%w: empty build id in upload output %q", cliargs.ErrCommandFailed, line)
	}
	return id, nil
}

// LaunchPath finds the server executable under
// <buildRoot>/<project>/Binaries/Win64 and returns its path relative to the
// install root, Windows separators included.
func LaunchPath(project, buildRoot string) (string, error) {
	dir := filepath.Join(buildRoot, project, "Binaries", "Win64")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: read executable dir: %v", cliargs.ErrArgument, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".exe") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no .exe found in %s", cliargs.ErrArgument, dir)
	}
	sort.Strings(names)
	exe := strings.TrimSuffix(names[0], filepath.Ext(names[0]))
	return project + `\Binaries\Win64\` + exe + ".exe", nil
}

// FleetSpec is everything create-fleet needs.
type FleetSpec struct {
	Name        string
	BuildID     string
	LaunchPath  string
	Project     string
	Environment string
	Fleet       config.FleetConfig
}

func (s FleetSpec) Description() string {
	return fmt.Sprintf("Fleet %s from build %s created from %s", s.Name, s.BuildID, s.Fleet.CreatedBy)
}

// Tag is a create-fleet resource tag.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// Tags returns the configured tags plus game and env, unless config already
// sets those keys.
func (s FleetSpec) Tags() []Tag {
	tags := make([]Tag, 0, len(s.Fleet.Tags)+2)
	seen := map[string]bool{}
	for _, t := range s.Fleet.Tags {
		tags = append(tags, Tag{Key: t.Key, Value: t.Value})
		seen[t.Key] = true
	}
	if !seen["game"] && s.Project != "" {
		tags = append(tags, Tag{Key: "game", Value: s.Project})
	}
	if !seen["env"] && s.Environment != "" {
		tags = append(tags, Tag{Key: "env", Value: s.Environment})
	}
	return tags
}

type location struct {
	Location string `json:"Location"`
}

type ipPermission struct {
	FromPort int    `json:"FromPort"`
	ToPort   int    `json:"ToPort"`
	IPRange  string `json:"IpRange"`
	Protocol string `json:"Protocol"`
}

type serverProcess struct {
	LaunchPath           string `json:"LaunchPath"`
	ConcurrentExecutions int    `json:"ConcurrentExecutions"`
}

type runtimeConfiguration struct {
	ServerProcesses                     []serverProcess `json:"ServerProcesses"`
	GameSessionActivationTimeoutSeconds int             `json:"GameSessionActivationTimeoutSeconds"`
}

// RuntimeLaunchPath joins the install root and the relative launch path.
func (s FleetSpec) RuntimeLaunchPath() string {
	root := strings.TrimRight(s.Fleet.InstallRoot, `\`)
	return root + `\` + s.LaunchPath
}

// Args renders the create-fleet argument list. Structured values are passed
// as JSON documents.
func (s FleetSpec) Args() ([]string, error) {
	locations := make([]location, 0, len(s.Fleet.Locations))
	for _, l := range s.Fleet.Locations {
		locations = append(locations, location{Location: l})
	}
	ports := make([]ipPermission, 0, len(s.Fleet.Ports))
	for _, p := range s.Fleet.Ports {
		ports = append(ports, ipPermission{FromPort: p.From, ToPort: p.To, IPRange: p.IPRange, Protocol: p.Protocol})
	}
	runtime := runtimeConfiguration{
		ServerProcesses: []serverProcess{{
			LaunchPath:           s.RuntimeLaunchPath(),
			ConcurrentExecutions: s.Fleet.ConcurrentExecutions,
		}},
		GameSessionActivationTimeoutSeconds: s.Fleet.ActivationTimeoutSeconds,
	}

	docs := make([]string, 4)
	for i, v := range []any{locations, s.Tags(), ports, runtime} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode fleet spec: %w", err)
		}
		docs[i] = string(raw)
	}

	return []string{
		"--name", s.Name,
		"--description", s.Description(),
		"--build-id", s.BuildID,
		"--locations", docs[0],
		"--tags", docs[1],
		"--ec2-instance-type", s.Fleet.InstanceType,
		"--fleet-type", s.Fleet.FleetType,
		"--ec2-inbound-permissions", docs[2],
		"--runtime-configuration", docs[3],
	}, nil
}
