package config

// DefaultParams is the BuildCookRun base flag list every package run starts from.
var DefaultParams = []string{
	"BuildCookRun",
	"-noP4",
	"-build",
	"-cook",
	"-stage",
	"-package",
	"-compile",
	"-compressed",
	"-SkipCookingEditorContent",
	"-pak",
	"-archive",
	"-buildmachine",
	"-NoCodeSign",
	"-skipdeploy",
	"-skipbuilderditor",
	"-nocompileeditor",
	"-utf8output",
	"-prereqs",
}

func Defaults() Config {
	return Config{
		ProjectName: "GameLiftTutorial",
		Unreal: UnrealConfig{
			CLI:           "ue4",
			Platform:      "Win64",
			Params:        append([]string(nil), DefaultParams...),
			EngineTargets: []string{"ShaderCompileWorker"},
			PackagedDir:   "Packaged",
			ZipDir:        "Zips",
			Archiver:      ArchiverSevenZip,
			SevenZip:      "7z",
		},
		GameLift: GameLiftConfig{
			CLI:                       "aws",
			OperatingSystem:           "WINDOWS_2016",
			Environment:               "production",
			BuildPollIntervalSeconds:  1,
			BuildTimeoutSeconds:       3600,
			MonitoringIntervalSeconds: 60,
			MonitoringTimeoutSeconds:  3600,
			FleetIDFile:               "fleetId.txt",
			Fleet: FleetConfig{
				InstanceType:             "c4.large",
				FleetType:                "SPOT",
				InstallRoot:              `C:\game`,
				ConcurrentExecutions:     3,
				ActivationTimeoutSeconds: 600,
				CreatedBy:                "Jenkins",
				Locations:                []string{"eu-west-1", "us-west-1", "us-east-1"},
				Ports: []PortRange{
					{From: 7777, To: 8000, IPRange: "0.0.0.0/0", Protocol: "UDP"},
				},
				Tags: []Tag{
					{Key: "dev", Value: "Jenkins"},
					{Key: "project", Value: "UE5 CI/CD"},
				},
			},
		},
		Storage: StorageConfig{
			CLI:               "aws",
			Backend:           BackendCLI,
			StorageClass:      "STANDARD",
			URLsFile:          "urls.txt",
			LinkExpirySeconds: 172800,
		},
	}
}
