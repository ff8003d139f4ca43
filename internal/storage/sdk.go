package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/danmuck/fleetctl/internal/cliargs"
)

// DefaultContentType is sent when detection fails.
const DefaultContentType = "application/octet-stream"

// S3API is the subset of *s3.Client used by SDKStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner is the subset of *s3.PresignClient used by SDKStore.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// SDKStore talks to S3 in-process instead of through the CLI.
type SDKStore struct {
	api     S3API
	presign Presigner
	bucket  string
	logger  zerolog.Logger
}

// NewSDKStore loads the default credential chain. A non-empty region
// overrides the profile region.
func NewSDKStore(ctx context.Context, bucket, region string, logger zerolog.Logger) (*SDKStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", cliargs.ErrToolUnavailable, err)
	}
	client := s3.NewFromConfig(cfg)
	return NewSDKStoreWithClient(client, s3.NewPresignClient(client), bucket, logger), nil
}

func NewSDKStoreWithClient(api S3API, presign Presigner, bucket string, logger zerolog.Logger) *SDKStore {
	return &SDKStore{api: api, presign: presign, bucket: bucket, logger: logger}
}

func (s *SDKStore) Upload(ctx context.Context, localPath, key, storageClass string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	contentType := DetectContentType(localPath)
	s.logger.Info().Msgf("put s3://%s/%s (%s)", s.bucket, key, contentType)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	}
	if storageClass != "" {
		input.StorageClass = types.StorageClass(storageClass)
	}
	if _, err := s.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%w: put s3://%s/%s: %v", cliargs.ErrCommandFailed, s.bucket, key, err)
	}
	return nil
}

func (s *SDKStore) List(ctx context.Context, prefix string) ([]string, error) {
	base := ObjectKey(prefix, "")
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(base),
		Delimiter: aws.String("/"),
	}

	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list s3://%s/%s: %v", cliargs.ErrCommandFailed, s.bucket, base, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), base)
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *SDKStore) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("%w: presign s3://%s/%s: %v", cliargs.ErrCommandFailed, s.bucket, key, err)
	}
	return req.URL, nil
}

// DetectContentType sniffs the file header, falling back to the extension
// and then to DefaultContentType.
func DetectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err == nil && mt != nil && mt.String() != DefaultContentType {
		return mt.String()
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return DefaultContentType
}
