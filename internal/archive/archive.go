// Package archive uploads the recommendation history to S3-compatible storage
// (AWS S3, MinIO, R2, iDrive e2).
package archive

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader stores one object under key.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Uploader uploads through the SDK's transfer manager.
type S3Uploader struct {
	uploader *manager.Uploader
	bucket   string
}

// NewS3Uploader builds an S3 client. Static credentials are used when an
// access key is given, otherwise the default AWS credential chain applies.
// A custom endpoint implies path-style addressing.
func NewS3Uploader(ctx context.Context, cfg Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("archive: region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := normaliseEndpoint(cfg.Endpoint)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &S3Uploader{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("archive: upload %s: %w", key, err)
	}
	return nil
}

// HistoryKey is the object key for a history snapshot taken at t.
func HistoryKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("history/%04d/%02d/%02d/history-%d.csv", t.Year(), int(t.Month()), t.Day(), t.Unix())
}

func normaliseEndpoint(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err == nil && parsed.Scheme != "" {
		return endpoint
	}
	return "https://" + endpoint
}
