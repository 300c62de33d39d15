package lookaside

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
	"github.com/coder4567/nwf-provider-license-api-1/internal/license"
)

// S3Store keeps one <prefix><id>.json object per license in a bucket
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Store creates an S3 store from the default AWS credential chain. If
// an endpoint is configured, path-style addressing is enabled (for MinIO and
// similar).
func NewS3Store(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if cfg.S3Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg, s3opts...), cfg.S3Bucket, cfg.S3Prefix, logger), nil
}

// NewS3StoreWithClient wraps an existing client
func NewS3StoreWithClient(client *s3.Client, bucket, prefix string, logger *slog.Logger) *S3Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With(slog.String("component", "s3_store")),
	}
}

// Get downloads <prefix><id>.json. NoSuchKey is a miss.
func (s *S3Store) Get(ctx context.Context, id string) ([]byte, bool, error) {
	if !license.ValidKey(id) {
		return nil, false, nil
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 read object: %w", err)
	}

	return data, true, nil
}

// Put uploads doc as <prefix><id>.json. A single PutObject replaces the
// object atomically.
func (s *S3Store) Put(ctx context.Context, id string, doc []byte) error {
	if !license.ValidKey(id) {
		return ErrInvalidKey
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(id)),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String(license.MediaType),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}

	s.logger.DebugContext(ctx, "License stored",
		slog.String("license_id", id),
		slog.String("bucket", s.bucket),
		slog.Int("bytes", len(doc)))

	return nil
}

func (s *S3Store) key(id string) string {
	return s.prefix + objectName(id)
}
