// Package storage syncs packaged artifacts to object storage and produces
// expiring download links for them.
package storage

import (
	"context"
	"strings"
	"time"
)

// ObjectStore is the narrow set of bucket operations the uploader needs.
// Keys are bucket-relative; List returns names relative to prefix and skips
// sub-prefixes.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, key, storageClass string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Presign(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// RemoteName is the object name used for a local file name.
func RemoteName(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

// ObjectKey joins a remote folder and an object name.
func ObjectKey(remoteDir, name string) string {
	remoteDir = strings.Trim(remoteDir, "/")
	if remoteDir == "" {
		return name
	}
	return remoteDir + "/" + name
}

// ParseListing reads `s3 ls` output. Sub-prefix lines ("PRE dir/") are
// dropped and the last whitespace-separated field of each object line is the
// object name.
func ParseListing(out []byte) []string {
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, "/") {
			continue
		}
		fields := strings.Fields(line)
		names = append(names, fields[len(fields)-1])
	}
	return names
}
