package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of *s3.Client the storage needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config describes the bucket.  Endpoint and ForcePathStyle support
// S3-compatible services such as MinIO.
type S3Config struct {
	Bucket         string
	Region         string
	Prefix         string // optional key prefix, e.g. "intake/"
	AccessKeyID    string
	SecretKey      string
	Endpoint       string
	ForcePathStyle bool
	UploadTimeout  time.Duration
}

// S3 stores uploads as objects.  Safe for concurrent use.
type S3 struct {
	client  S3Client
	bucket  string
	prefix  string
	timeout time.Duration
}

// S3Option configures NewS3.
type S3Option func(*s3Options)

type s3Options struct {
	client     S3Client
	cfgOptions []func(*config.LoadOptions) error
}

// WithS3Client injects a pre-built client, mainly for tests.
func WithS3Client(c S3Client) S3Option { return func(o *s3Options) { o.client = c } }

// WithS3ConfigOption adds an AWS config loader option.
func WithS3ConfigOption(fn func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) { o.cfgOptions = append(o.cfgOptions, fn) }
}

// NewS3 builds an S3 store.  Static credentials are used when both keys are
// set; otherwise the default AWS chain applies.
func NewS3(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}
	o := &s3Options{}
	for _, fn := range opts {
		fn(o)
	}

	client := o.client
	if client == nil {
		loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")))
		}
		loadOpts = append(loadOpts, o.cfgOptions...)

		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
		}
		client = s3.NewFromConfig(awsCfg, func(so *s3.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3{client: client, bucket: cfg.Bucket, prefix: prefix, timeout: cfg.UploadTimeout}, nil
}

// Put uploads fh to <prefix><kind>/<stored name>.
func (s *S3) Put(ctx context.Context, kind string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}
	if !validKind(kind) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = src.Close() }()

	name := StoredName(fh.Filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.Key(kind, name)),
		Body:          src,
		ContentType:   aws.String(contentType(fh)),
		ContentLength: aws.Int64(fh.Size),
	})
	if err != nil {
		return "", classifyS3Error(err, "upload "+kind)
	}
	return name, nil
}

// Key returns the object key for a stored name.
func (s *S3) Key(kind, name string) string { return s.prefix + kind + "/" + name }

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// classifyS3Error maps SDK failures onto the package sentinels.
func classifyS3Error(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrOperationTimeout, op)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", ErrOperationCanceled, op)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "AccessDenied":
			return fmt.Errorf("%w: %s", ErrAccessDenied, op)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, op)
		case "NoSuchBucket":
			return ErrBucketNotFound
		default:
			return fmt.Errorf("%s failed (code: %s): %w", op, code, err)
		}
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
