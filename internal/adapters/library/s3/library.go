// Package s3 serves photos stored under a prefix of an S3 bucket
package s3

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sourcegraph/conc/pool"

	"github.com/kamal-hamza/px-cli/internal/adapters/library"
	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/logger"
)

// sniffBytes is the ranged read used to sniff type and dimensions
const sniffBytes = 128 * 1024

// API is the subset of the S3 client used by the library
type API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Options configure the library
type Options struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string // Custom endpoint for MinIO, LocalStack and friends
	PathStyle bool
	AccessKey string // Optional static credentials; default chain otherwise
	SecretKey string
	Workers   int // Concurrent object reads during Fetch
}

// Library is a PhotoLibrary over S3 objects. Asset identifiers are object keys.
type Library struct {
	api       API
	bucket    string
	prefix    string
	workers   int
	listLimit int32

	mu    sync.RWMutex
	sizes map[string]int64
}

// New loads AWS configuration and creates a library
func New(ctx context.Context, opts Options) (*Library, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	lib := NewWithClient(client, opts.Bucket, opts.Prefix)
	if opts.Workers > 0 {
		lib.workers = opts.Workers
	}
	return lib, nil
}

// NewWithClient creates a library over an existing client
func NewWithClient(api API, bucket, prefix string) *Library {
	return &Library{
		api:     api,
		bucket:  bucket,
		prefix:  strings.TrimLeft(prefix, "/"),
		workers: 8,
		sizes:   make(map[string]int64),
	}
}

// Name returns the backend name
func (l *Library) Name() string {
	return "s3"
}

// Authorize lists a single key to check bucket access
func (l *Library) Authorize(ctx context.Context) error {
	_, err := l.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(l.bucket),
		Prefix:  aws.String(l.prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		if isAccessDenied(err) {
			return fmt.Errorf("%w: s3://%s/%s: %v", ports.ErrAuthorizationDenied, l.bucket, l.prefix, err)
		}
		return fmt.Errorf("failed to access bucket %s: %w", l.bucket, err)
	}
	return nil
}

type sniffed struct {
	asset domain.PhotoAsset
	ok    bool
}

// Fetch lists the prefix and sniffs every object for type and dimensions
func (l *Library) Fetch(ctx context.Context, opts domain.FetchOptions) (ports.FetchResult, error) {
	var objects []types.Object
	paginator := s3.NewListObjectsV2Paginator(l.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(l.prefix),
	}, func(o *s3.ListObjectsV2PaginatorOptions) {
		if l.listLimit > 0 {
			o.Limit = l.listLimit
		}
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", l.bucket, l.prefix, err)
		}
		objects = append(objects, page.Contents...)
	}

	sizes := make(map[string]int64, len(objects))
	p := pool.NewWithResults[sniffed]().WithContext(ctx).WithMaxGoroutines(l.workers)
	for _, obj := range objects {
		obj := obj
		key := aws.ToString(obj.Key)
		if strings.HasSuffix(key, "/") {
			continue
		}
		sizes[key] = aws.ToInt64(obj.Size)

		created := aws.ToTime(obj.LastModified)
		if opts.Range != nil && !opts.Range.Contains(created) {
			continue
		}

		p.Go(func(ctx context.Context) (sniffed, error) {
			return l.sniff(ctx, key, obj)
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to read objects: %w", err)
	}

	l.mu.Lock()
	l.sizes = sizes
	l.mu.Unlock()

	assets := make([]domain.PhotoAsset, 0, len(results))
	for _, r := range results {
		if r.ok && opts.Matches(r.asset) {
			assets = append(assets, r.asset)
		}
	}
	domain.OrderByCreation(assets)
	logger.Debug("listed bucket", logger.KeyPath, l.bucket+"/"+l.prefix, logger.KeyCount, len(assets))

	return ports.NewSliceResult(assets), nil
}

// sniff reads the head of an object. Non-image objects are skipped, not failed.
func (l *Library) sniff(ctx context.Context, key string, obj types.Object) (sniffed, error) {
	out, err := l.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", sniffBytes-1)),
	})
	if err != nil {
		if ctx.Err() != nil {
			return sniffed{}, ctx.Err()
		}
		logger.Debug("skipping object", logger.KeyPath, key, logger.KeyError, err.Error())
		return sniffed{}, nil
	}
	defer out.Body.Close()

	res, err := library.Inspect(out.Body)
	if err != nil {
		return sniffed{}, nil
	}

	name := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		name = key[i+1:]
	}

	asset, err := domain.NewPhotoAsset(key, name, res.Width, res.Height, aws.ToTime(obj.LastModified))
	if err != nil {
		logger.Debug("skipping object", logger.KeyPath, key, logger.KeyError, err.Error())
		return sniffed{}, nil
	}
	asset.MediaType = res.MediaType
	return sniffed{ok: true, asset: *asset}, nil
}

// ResourceSize returns the object size from the last listing, or a HEAD request
func (l *Library) ResourceSize(ctx context.Context, asset domain.PhotoAsset) (int64, error) {
	l.mu.RLock()
	size, ok := l.sizes[asset.ID]
	l.mu.RUnlock()
	if ok && size > 0 {
		return size, nil
	}

	out, err := l.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(asset.ID),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: %s", ports.ErrAssetNotFound, asset.ID)
		}
		return 0, fmt.Errorf("%w: %v", ports.ErrMetadataUnavailable, err)
	}
	return aws.ToInt64(out.ContentLength), nil
}

// RequestImage downloads the object and scales it
func (l *Library) RequestImage(ctx context.Context, asset domain.PhotoAsset, req domain.ImageRequest) (image.Image, error) {
	out, err := l.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(asset.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrImageUnavailable, asset.ID, err)
	}
	defer out.Body.Close()

	img, err := library.Decode(out.Body, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ports.ErrImageUnavailable, asset.ID, err)
	}
	return img, nil
}

// Delete removes the objects in one request. Every key must exist.
func (l *Library) Delete(ctx context.Context, assets []domain.PhotoAsset) error {
	ids := make([]types.ObjectIdentifier, 0, len(assets))
	for _, a := range assets {
		if _, err := l.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(a.ID),
		}); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: %s", ports.ErrAssetNotFound, a.ID)
			}
			return fmt.Errorf("failed to check %s: %w", a.ID, err)
		}
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(a.ID)})
	}

	out, err := l.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(l.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to delete %d object(s), first %s: %s",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}

	l.mu.Lock()
	for _, a := range assets {
		delete(l.sizes, a.ID)
	}
	l.mu.Unlock()
	return nil
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	switch errorCode(err) {
	case "NotFound", "NoSuchKey":
		return true
	}
	return false
}

func isAccessDenied(err error) bool {
	switch errorCode(err) {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Forbidden":
		return true
	}
	return false
}
