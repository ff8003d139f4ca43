package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/danmuck/fleetctl/internal/tools"
)

// CLIStore drives `<cli> s3` one object at a time.
type CLIStore struct {
	inv    *tools.Invoker
	cli    string
	bucket string
	region string
}

func NewCLIStore(inv *tools.Invoker, cli, bucket, region string) *CLIStore {
	if cli == "" {
		cli = "aws"
	}
	return &CLIStore{inv: inv, cli: cli, bucket: bucket, region: region}
}

func (s *CLIStore) uri(key string) string {
	return "s3://" + s.bucket + "/" + key
}

func (s *CLIStore) args(args ...string) []string {
	out := append([]string{"s3"}, args...)
	if s.region != "" {
		out = append(out, "--region", s.region)
	}
	return out
}

func (s *CLIStore) Upload(ctx context.Context, localPath, key, storageClass string) error {
	return s.inv.Stream(ctx, s.cli, s.args(
		"cp", localPath, s.uri(key),
		"--storage-class="+storageClass,
		"--no-progress",
	)...)
}

func (s *CLIStore) List(ctx context.Context, prefix string) ([]string, error) {
	stdout, err := s.inv.Call(ctx, s.cli, s.args("ls", s.uri(ObjectKey(prefix, "")))...)
	if err != nil {
		return nil, err
	}
	return ParseListing(stdout), nil
}

func (s *CLIStore) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	stdout, err := s.inv.Call(ctx, s.cli, s.args(
		"presign", s.uri(key),
		"--expires-in", strconv.Itoa(int(expiry/time.Second)),
	)...)
	if err != nil {
		return "", err
	}
	return tools.LastLine(stdout), nil
}
