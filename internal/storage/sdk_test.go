package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/fleetctl/internal/cliargs"
)

type mockS3 struct {
	PutObjectFunc     func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2Func func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, params, optFns...)
}

func (m *mockS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return m.ListObjectsV2Func(ctx, params, optFns...)
}

type mockPresigner struct {
	expires time.Duration
}

func (m *mockPresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	m.expires = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    "https://" + aws.ToString(params.Bucket) + ".s3.amazonaws.com/" + aws.ToString(params.Key) + "?sig",
		Method: "GET",
	}, nil
}

func TestSDKStoreUploadDetectsContentType(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "b txt.png")
	// PNG signature followed by an IHDR chunk header.
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644))

	var got *s3.PutObjectInput
	var body []byte
	api := &mockS3{
		PutObjectFunc: func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			got = params
			var err error
			body, err = io.ReadAll(params.Body)
			return &s3.PutObjectOutput{}, err
		},
	}
	store := NewSDKStoreWithClient(api, &mockPresigner{}, "artifacts", zerolog.Nop())

	require.NoError(t, store.Upload(context.Background(), png, "release/b-txt.png", "STANDARD_IA"))
	require.NotNil(t, got)
	assert.Equal(t, "artifacts", aws.ToString(got.Bucket))
	assert.Equal(t, "release/b-txt.png", aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, types.StorageClassStandardIa, got.StorageClass)
	assert.Len(t, body, 16)
}

func TestSDKStoreUploadFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	api := &mockS3{
		PutObjectFunc: func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, errors.New("AccessDenied")
		},
	}
	store := NewSDKStoreWithClient(api, &mockPresigner{}, "b", zerolog.Nop())

	err := store.Upload(context.Background(), file, "r/a.txt", "STANDARD")
	require.Error(t, err)
	assert.ErrorIs(t, err, cliargs.ErrCommandFailed)
	assert.Contains(t, err.Error(), "AccessDenied")

	err = store.Upload(context.Background(), filepath.Join(t.TempDir(), "missing"), "r/x", "STANDARD")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSDKStoreListExcludesSubPrefixes(t *testing.T) {
	var inputs []*s3.ListObjectsV2Input
	api := &mockS3{
		ListObjectsV2Func: func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			inputs = append(inputs, params)
			if params.ContinuationToken == nil {
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("release/")},
						{Key: aws.String("release/a.txt")},
					},
					CommonPrefixes:        []types.CommonPrefix{{Prefix: aws.String("release/nested/")}},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("page-2"),
				}, nil
			}
			return &s3.ListObjectsV2Output{
				Contents:    []types.Object{{Key: aws.String("release/b-txt.png")}},
				IsTruncated: aws.Bool(false),
			}, nil
		},
	}
	store := NewSDKStoreWithClient(api, &mockPresigner{}, "artifacts", zerolog.Nop())

	names, err := store.List(context.Background(), "release")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b-txt.png"}, names)
	require.Len(t, inputs, 2)
	assert.Equal(t, "release/", aws.ToString(inputs[0].Prefix))
	assert.Equal(t, "/", aws.ToString(inputs[0].Delimiter))
	assert.Equal(t, "page-2", aws.ToString(inputs[1].ContinuationToken))
}

func TestSDKStorePresignExpiry(t *testing.T) {
	presigner := &mockPresigner{}
	store := NewSDKStoreWithClient(&mockS3{}, presigner, "artifacts", zerolog.Nop())

	url, err := store.Presign(context.Background(), "release/a.txt", 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://artifacts.s3.amazonaws.com/release/a.txt?sig", url)
	assert.Equal(t, 48*time.Hour, presigner.expires)
}

func TestSDKSyncerLinksInListingOrder(t *testing.T) {
	api := &mockS3{
		ListObjectsV2Func: func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{Contents: []types.Object{
				{Key: aws.String("r/z.zip")},
				{Key: aws.String("r/a.zip")},
			}}, nil
		},
	}
	syncer := Syncer{Store: NewSDKStoreWithClient(api, &mockPresigner{}, "b", zerolog.Nop()), Logger: zerolog.Nop()}

	links, err := syncer.Links(context.Background(), "r", time.Hour)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, Link{Key: "z.zip", URL: "https://b.s3.amazonaws.com/r/z.zip?sig"}, links[0])
	assert.Equal(t, "a.zip", links[1].Key)
}

func TestDetectContentTypeFallsBackToExtension(t *testing.T) {
	dir := t.TempDir()
	binary := []byte{0x00, 0x01, 0x02, 0xff}
	manifest := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(manifest, binary, 0o644))
	assert.Contains(t, DetectContentType(manifest), "json")

	unknown := filepath.Join(dir, "blob.unknownext")
	require.NoError(t, os.WriteFile(unknown, binary, 0o644))
	assert.Equal(t, DefaultContentType, DetectContentType(unknown))
}
