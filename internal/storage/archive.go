package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/Cheertaboi/coupon-management-service/internal/config"
)

// Archiver keeps a copy of an uploaded import file and returns its key.
type Archiver interface {
	Archive(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error)
}

// NopArchiver is used when no archive bucket is configured.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, string, io.ReadSeeker, string) (string, error) {
	return "", nil
}

type S3Archiver struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Archiver builds an archiver for any S3-compatible endpoint (R2,
// MinIO or AWS itself when Endpoint is empty).
func NewS3Archiver(ctx context.Context, cfg appconfig.ArchiveConfig) (*S3Archiver, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, now: time.Now}, nil
}

func (a *S3Archiver) Archive(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error) {
	key := a.objectKey(name)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to archive: %w", err)
	}
	return key, nil
}

// objectKey is <prefix>/<yyyy/mm/dd>/<uuid>-<base name>.
func (a *S3Archiver) objectKey(name string) string {
	day := a.now().UTC().Format("2006/01/02")
	return path.Join(a.prefix, day, uuid.NewString()+"-"+path.Base(name))
}
