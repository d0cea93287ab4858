// Package storage persists uploaded issue images in an S3-compatible backend.
package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid/v5"

	"github.com/civitrack/civitrack/internal/errs"
)

// DefaultImage is the sentinel reference recorded when no file was uploaded.
const DefaultImage = "default.png"

// FileStore persists an uploaded file and returns the reference to record
// against the issue. An empty upload yields the DefaultImage sentinel.
type FileStore interface {
	Store(ctx context.Context, srcPath, destName string) (string, error)
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements FileStore against an S3-compatible backend (MinIO in
// development).
type S3Store struct {
	client s3API
	bucket string
	now    func() time.Time
}

// NewS3Store constructs an S3Store with static credentials and a custom
// endpoint.
func NewS3Store(ctx context.Context, endpoint, region, accessKey, secretKey, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &S3Store{client: client, bucket: bucket, now: time.Now}, nil
}

// Store uploads the file at srcPath under a date/uuid key and returns that
// key. A missing or zero-size upload stores nothing and returns the
// DefaultImage sentinel.
func (s *S3Store) Store(ctx context.Context, srcPath, destName string) (string, error) {
	if srcPath == "" {
		return DefaultImage, nil
	}
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %v: %w", err, errs.ErrPersistence)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat upload: %v: %w", err, errs.ErrPersistence)
	}
	if st.Size() == 0 {
		return DefaultImage, nil
	}

	key, err := s.storageKey(destName)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %v: %w", key, err, errs.ErrPersistence)
	}
	return key, nil
}

// storageKey namespaces uploads by date so buckets stay browsable.
func (s *S3Store) storageKey(name string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("storage key: %w", err)
	}
	d := s.now()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s-%s", d.Year(), d.Month(), d.Day(), id, name), nil
}
