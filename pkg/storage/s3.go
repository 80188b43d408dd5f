// Package storage uploads prescription documents and product images to
// S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pharmacare/pharmacare-backend/pkg/config"
)

// PutObjectAPI is the subset of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes objects to a bucket and returns their public URL.
type Uploader struct {
	client        PutObjectAPI
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
	pathStyle     bool
}

// NewUploader builds an S3 client from cfg. Static credentials are used when
// an access key is configured, otherwise the default AWS credential chain.
func NewUploader(ctx context.Context, cfg config.StorageConfig) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewUploaderWithClient(client, cfg), nil
}

// NewUploaderWithClient wires an existing client, e.g. a test double.
func NewUploaderWithClient(client PutObjectAPI, cfg config.StorageConfig) *Uploader {
	return &Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      strings.TrimSuffix(cfg.Endpoint, "/"),
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		pathStyle:     cfg.UsePathStyle,
	}
}

// Upload stores body under prefix/<uuid><ext> and returns the object URL.
func (u *Uploader) Upload(ctx context.Context, prefix, filename, contentType string, body io.Reader) (string, error) {
	key := ObjectKey(prefix, filename)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return u.URL(key), nil
}

// URL returns the public URL of key.
func (u *Uploader) URL(key string) string {
	switch {
	case u.publicBaseURL != "":
		return fmt.Sprintf("%s/%s", u.publicBaseURL, key)
	case u.endpoint != "" && u.pathStyle:
		return fmt.Sprintf("%s/%s/%s", u.endpoint, u.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
	}
}

// ObjectKey builds a collision-free key that keeps the file extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(prefix, uuid.New().String()+ext)
}
