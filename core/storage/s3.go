package storage

import (
	"context"
	"fmt"
	"io"

	"family-calendar-api/core/config"
	"family-calendar-api/core/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader stores uploaded files and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type s3Uploader struct {
	client *s3.Client
	bucket string
	base   string
}

func NewS3Uploader(cfg *config.Config) Uploader {
	client := s3.New(s3.Options{
		Region:       cfg.S3Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		BaseEndpoint: optionalEndpoint(cfg.S3Endpoint),
	})

	base := cfg.S3Endpoint
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	} else {
		base = fmt.Sprintf("%s/%s", base, cfg.S3Bucket)
	}

	return &s3Uploader{
		client: client,
		bucket: cfg.S3Bucket,
		base:   base,
	}
}

func optionalEndpoint(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}

func (u *s3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("Storage:Upload", "key", key, "error", err)
		return "", err
	}

	return fmt.Sprintf("%s/%s", u.base, key), nil
}
