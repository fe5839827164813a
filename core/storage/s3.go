package storage

import (
	"bytes"
	"context"
	"fmt"

	"court-reservation-api/core/config"
	"court-reservation-api/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectUploader stores a single object under key.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type S3Uploader struct {
	client *s3.Client
	bucket string
}

func NewS3Uploader(cfg config.ArchiveConfig) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 uploader initialized", "bucket", cfg.Bucket, "region", cfg.Region, "endpoint", cfg.Endpoint)
	return &S3Uploader{client: client, bucket: cfg.Bucket}, nil
}

// Upload writes body to the configured bucket and returns the s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		logger.Error("S3Uploader:Upload", "bucket", u.bucket, "key", key, "error", err)
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
