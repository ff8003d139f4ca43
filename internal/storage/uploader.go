package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/fleetctl/internal/cliargs"
	"github.com/danmuck/fleetctl/internal/config"
	"github.com/danmuck/fleetctl/internal/logging"
	"github.com/rs/zerolog"
)

// UploadRequest carries the uploader flags. Folder and bucket values are
// cleaned of spaces and line breaks before use.
type UploadRequest struct {
	LocalFolder   cliargs.Pair
	RemoteFolder  cliargs.Pair
	Bucket        cliargs.Pair
	GenerateLinks bool
	LinkExpiry    int
}

// DefaultUploadRequest seeds the link lifetime from config.
func DefaultUploadRequest(cfg config.StorageConfig) UploadRequest {
	return UploadRequest{LinkExpiry: cfg.LinkExpirySeconds}
}

// Opener returns the store for a validated bucket name.
type Opener func(ctx context.Context, bucket string) (ObjectStore, error)

// Uploader syncs a packaged folder and optionally writes the links file.
type Uploader struct {
	cfg       config.StorageConfig
	open      Opener
	preflight func(ctx context.Context) error
	logger    zerolog.Logger
}

// NewUploader builds an uploader. preflight may be nil when the backend needs
// no external tool.
func NewUploader(cfg config.StorageConfig, open Opener, preflight func(ctx context.Context) error, logger zerolog.Logger) *Uploader {
	return &Uploader{cfg: cfg, open: open, preflight: preflight, logger: logger}
}

func clean(p cliargs.Pair) cliargs.Pair {
	if p.Set {
		p.Value = cliargs.Clean(p.Value)
	}
	return p
}

// Run returns the generated links, or nil when links were not requested.
func (u *Uploader) Run(ctx context.Context, req UploadRequest) ([]Link, error) {
	if u.preflight != nil {
		if err := u.preflight(ctx); err != nil {
			return nil, err
		}
	}

	req.LocalFolder = clean(req.LocalFolder)
	req.RemoteFolder = clean(req.RemoteFolder)
	req.Bucket = clean(req.Bucket)
	if err := cliargs.Required(u.logger, req.LocalFolder, req.RemoteFolder, req.Bucket); err != nil {
		return nil, err
	}
	if req.GenerateLinks && req.LinkExpiry <= 0 {
		return nil, fmt.Errorf("%w: link_expiry must be positive", cliargs.ErrArgument)
	}

	store, err := u.open(ctx, req.Bucket.Value)
	if err != nil {
		return nil, err
	}
	syncer := Syncer{Store: store, StorageClass: u.cfg.StorageClass, Logger: u.logger}

	logging.Step(u.logger, "Syncing "+req.LocalFolder.Value)
	if _, err := syncer.Sync(ctx, req.LocalFolder.Value, req.RemoteFolder.Value); err != nil {
		return nil, err
	}
	if !req.GenerateLinks {
		return nil, nil
	}

	logging.Step(u.logger, "Generating links")
	links, err := syncer.Links(ctx, req.RemoteFolder.Value, time.Duration(req.LinkExpiry)*time.Second)
	if err != nil {
		return nil, err
	}
	u.logger.Info().Msgf("Writing %d links to %s", len(links), u.cfg.URLsFile)
	if err := WriteLinks(u.cfg.URLsFile, links); err != nil {
		u.logger.Error().Msgf("An I/O error occurred: %v", err)
		return links, err
	}
	return links, nil
}
