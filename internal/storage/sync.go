package storage

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/danmuck/fleetctl/internal/results"
	"github.com/rs/zerolog"
)

// Link is one presigned download URL.
type Link struct {
	Key string
	URL string
}

// Syncer copies a local tree into a flat remote folder, one file at a time.
type Syncer struct {
	Store        ObjectStore
	StorageClass string
	Logger       zerolog.Logger
}

// Sync uploads every regular file under localDir in lexical walk order.
// Nested directories are flattened: each object is named after the file's
// base name with spaces replaced. It returns the uploaded keys.
func (s Syncer) Sync(ctx context.Context, localDir, remoteDir string) ([]string, error) {
	s.Logger.Info().Msg("Uploading files to S3...")
	var keys []string
	err := filepath.WalkDir(localDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		key := ObjectKey(remoteDir, RemoteName(d.Name()))
		if err := s.Store.Upload(ctx, path, key, s.StorageClass); err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return keys, fmt.Errorf("sync %s: %w", localDir, err)
	}
	return keys, nil
}

// Links lists remoteDir and presigns each object in listing order.
func (s Syncer) Links(ctx context.Context, remoteDir string, expiry time.Duration) ([]Link, error) {
	s.Logger.Info().Msgf("Listing files in dir: %s", remoteDir)
	names, err := s.Store.List(ctx, remoteDir)
	if err != nil {
		return nil, err
	}
	s.Logger.Info().Msgf("Found files: [%s]", strings.Join(names, ", "))

	links := make([]Link, 0, len(names))
	for _, name := range names {
		url, err := s.Store.Presign(ctx, ObjectKey(remoteDir, name), expiry)
		if err != nil {
			return links, err
		}
		s.Logger.Info().Msgf("Created url: %s", url)
		links = append(links, Link{Key: name, URL: url})
	}
	return links, nil
}

// FormatLinks renders one "key: url" line per link.
func FormatLinks(links []Link) string {
	var b strings.Builder
	for _, l := range links {
		b.WriteString(l.Key)
		b.WriteString(": ")
		b.WriteString(l.URL)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteLinks replaces path with the formatted links.
func WriteLinks(path string, links []Link) error {
	return results.Write(path, []byte(FormatLinks(links)))
}
