package export

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yumyai/uniref90/internal/util"
)

// Uploader stores a finished export under bucket/key.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, body io.ReadSeeker) error
}

type S3Uploader struct {
	client *s3.Client
}

// NewS3Uploader builds a client from AWS_REGION, AWS_ENDPOINT, AWS_ACCESS_KEY
// and AWS_SECRET_KEY. Path-style addressing keeps MinIO-like endpoints working.
func NewS3Uploader(ctx context.Context) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(util.GetEnvString("AWS_REGION", "us-east-1")),
	}
	if endpoint := util.GetEnv("AWS_ENDPOINT"); endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}
	if key := util.GetEnv("AWS_ACCESS_KEY"); key != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			key,
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &S3Uploader{client: client}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, bucket, key string, body io.ReadSeeker) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// parseS3URL splits s3://bucket/key. ok is false for anything else.
func parseS3URL(dest string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(dest, "s3://") {
		return "", "", false, nil
	}
	u, err := url.Parse(dest)
	if err != nil {
		return "", "", true, fmt.Errorf("invalid s3 destination %q: %w", dest, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", true, fmt.Errorf("invalid s3 destination %q: want s3://bucket/key", dest)
	}
	return u.Host, key, true, nil
}
