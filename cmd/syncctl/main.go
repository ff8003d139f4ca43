// Command syncctl copies a packaged folder to S3 and can write presigned
// download links for everything under the remote folder.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
	"github.com/danmuck/fleetctl/internal/logging"
	"github.com/danmuck/fleetctl/internal/stage"
	"github.com/danmuck/fleetctl/internal/storage"
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
		flags         stage.Flags
		generateLinks bool
		backend       string
		region        string
		urlsFile      string
	)
	fs := pflag.NewFlagSet("syncctl", pflag.ContinueOnError)
	flags.Register(fs)
	fs.String("local_folder", "", "local directory to upload")
	fs.String("remote_folder", "", "remote folder inside the bucket")
	fs.String("bucket", "", "destination bucket")
	fs.BoolVar(&generateLinks, "generate_links", false, "write presigned links for the remote folder")
	fs.String("link_expiry", "", "presigned link lifetime in seconds (config value when unset)")
	fs.StringVar(&backend, "backend", "", "storage backend: cli|sdk (config value when empty)")
	fs.StringVar(&region, "aws_region", "", "bucket region (config value when empty)")
	fs.StringVar(&urlsFile, "urls_file", "", "links output file (config value when empty)")
	if err := cliargs.Parse(fs, argv); err != nil {
		return stage.Fail(deps.Logger, err)
	}

	env, err := stage.Open("syncctl", flags, deps)
	if err != nil {
		return stage.Fail(deps.Logger, err)
	}

	cfg := env.Config.Storage
	if backend != "" {
		cfg.Backend = backend
	}
	if region != "" {
		cfg.Region = region
	}
	if urlsFile != "" {
		cfg.URLsFile = urlsFile
	}

	pairs := cliargs.FromFlags(fs, "local_folder", "remote_folder", "bucket", "link_expiry")
	req := storage.DefaultUploadRequest(cfg)
	req.LocalFolder = pairs[0]
	req.RemoteFolder = pairs[1]
	req.Bucket = pairs[2]
	req.GenerateLinks = generateLinks
	if pairs[3].Set {
		if req.LinkExpiry, err = cliargs.Int(pairs[3].Name, pairs[3].Value); err != nil {
			return env.Exit(err)
		}
	}

	uploader, err := newUploader(env, cfg)
	if err != nil {
		return env.Exit(err)
	}
	_, err = uploader.Run(ctx, req)
	return env.Exit(err)
}

func newUploader(env *stage.Env, cfg config.StorageConfig) (*storage.Uploader, error) {
	switch cfg.Backend {
	case config.BackendCLI:
		open := func(_ context.Context, bucket string) (storage.ObjectStore, error) {
			return storage.NewCLIStore(env.Invoker, cfg.CLI, bucket, cfg.Region), nil
		}
		preflight := func(ctx context.Context) error {
			return tools.Preflight(ctx, env.Invoker, cfg.CLI, "--version")
		}
		return storage.NewUploader(cfg, open, preflight, env.Logger), nil
	case config.BackendSDK:
		open := func(ctx context.Context, bucket string) (storage.ObjectStore, error) {
			return storage.NewSDKStore(ctx, bucket, cfg.Region, env.Logger)
		}
		return storage.NewUploader(cfg, open, nil, env.Logger), nil
	default:
		return nil, fmt.Errorf("%w: backend must be %q or %q, got %q", cliargs.ErrArgument, config.BackendCLI, config.BackendSDK, cfg.Backend)
	}
}
