package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/fleetctl/internal/cliargs"
)

// Config carries the project constants every stage binary used to hard-code.
type Config struct {
	ProjectName string         `toml:"project_name"`
	Unreal      UnrealConfig   `toml:"unreal"`
	GameLift    GameLiftConfig `toml:"gamelift"`
	Storage     StorageConfig  `toml:"storage"`
}

type UnrealConfig struct {
	CLI           string   `toml:"cli"`
	Platform      string   `toml:"platform"`
	Params        []string `toml:"params"`
	EngineTargets []string `toml:"engine_targets"`
	PackagedDir   string   `toml:"packaged_dir"`
	ZipDir        string   `toml:"zip_dir"`
	Archiver      string   `toml:"archiver"`
	SevenZip      string   `toml:"seven_zip"`
}

type GameLiftConfig struct {
	CLI                       string      `toml:"cli"`
	OperatingSystem           string      `toml:"operating_system"`
	Environment               string      `toml:"environment"`
	BuildPollIntervalSeconds  int         `toml:"build_poll_interval_seconds"`
	BuildTimeoutSeconds       int         `toml:"build_timeout_seconds"`
	MonitoringIntervalSeconds int         `toml:"monitoring_interval_seconds"`
	MonitoringTimeoutSeconds  int         `toml:"monitoring_timeout_seconds"`
	FleetIDFile               string      `toml:"fleet_id_file"`
	Fleet                     FleetConfig `toml:"fleet"`
}

type FleetConfig struct {
	InstanceType             string      `toml:"instance_type"`
	FleetType                string      `toml:"fleet_type"`
	InstallRoot              string      `toml:"install_root"`
	ConcurrentExecutions     int         `toml:"concurrent_executions"`
	ActivationTimeoutSeconds int         `toml:"activation_timeout_seconds"`
	CreatedBy                string      `toml:"created_by"`
	Locations                []string    `toml:"locations"`
	Ports                    []PortRange `toml:"ports"`
	Tags                     []Tag       `toml:"tags"`
}

type PortRange struct {
	From     int    `toml:"from"`
	To       int    `toml:"to"`
	IPRange  string `toml:"ip_range"`
	Protocol string `toml:"protocol"`
}

type Tag struct {
	Key   string `toml:"key"`
	Value string `toml:"value"`
}

type StorageConfig struct {
	CLI               string `toml:"cli"`
	Backend           string `toml:"backend"`
	StorageClass      string `toml:"storage_class"`
	Region            string `toml:"region"`
	URLsFile          string `toml:"urls_file"`
	LinkExpirySeconds int    `toml:"link_expiry_seconds"`
}

const (
	ArchiverSevenZip = "7z"
	ArchiverZip      = "zip"

	BackendCLI = "cli"
	BackendSDK = "sdk"
)

// Load decodes path over Defaults. An empty path yields the defaults. Keys
// the file sets that no field consumes are rejected.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: config load failed (%s): %v", cliargs.ErrArgument, path, err)
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: config parse failed (%s): %v", cliargs.ErrArgument, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%w: config %s has unknown keys: %s", cliargs.ErrArgument, path, strings.Join(keys, ", "))
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: config %s invalid: %v", cliargs.ErrArgument, path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.ProjectName) == "" {
		return fmt.Errorf("project_name is required")
	}
	if strings.TrimSpace(cfg.Unreal.CLI) == "" {
		return fmt.Errorf("unreal.cli is required")
	}
	switch cfg.Unreal.Archiver {
	case ArchiverSevenZip, ArchiverZip:
	default:
		return fmt.Errorf("unreal.archiver must be %q or %q, got %q", ArchiverSevenZip, ArchiverZip, cfg.Unreal.Archiver)
	}
	if strings.TrimSpace(cfg.GameLift.CLI) == "" {
		return fmt.Errorf("gamelift.cli is required")
	}
	if cfg.GameLift.BuildPollIntervalSeconds <= 0 {
		return fmt.Errorf("gamelift.build_poll_interval_seconds must be positive")
	}
	if cfg.GameLift.MonitoringIntervalSeconds <= 0 {
		return fmt.Errorf("gamelift.monitoring_interval_seconds must be positive")
	}
	if strings.TrimSpace(cfg.GameLift.FleetIDFile) == "" {
		return fmt.Errorf("gamelift.fleet_id_file is required")
	}
	if len(cfg.GameLift.Fleet.Locations) == 0 {
		return fmt.Errorf("gamelift.fleet.locations must not be empty")
	}
	for i, p := range cfg.GameLift.Fleet.Ports {
		if p.From <= 0 || p.To < p.From || p.To > 65535 {
			return fmt.Errorf("gamelift.fleet.ports[%d] invalid range %d-%d", i, p.From, p.To)
		}
	}
	switch cfg.Storage.Backend {
	case BackendCLI, BackendSDK:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendCLI, BackendSDK, cfg.Storage.Backend)
	}
	if strings.TrimSpace(cfg.Storage.StorageClass) == "" {
		return fmt.Errorf("storage.storage_class is required")
	}
	if strings.TrimSpace(cfg.Storage.URLsFile) == "" {
		return fmt.Errorf("storage.urls_file is required")
	}
	return nil
}
