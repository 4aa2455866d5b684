package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/rfpforge/rfpforge/internal/config"
	"github.com/rfpforge/rfpforge/internal/domain"
)

// newCloudBackends builds the S3 object store and DynamoDB session store
// from one shared AWS configuration.
func newCloudBackends(ctx context.Context, cfg config.StorageConfig) (ObjectStore, SessionStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	objects, err := NewS3ObjectStore(ctx, awsCfg, cfg.Bucket)
	if err != nil {
		return nil, nil, err
	}

	sessions, err := NewDynamoSessionStore(ctx, awsCfg, cfg.Table)
	if err != nil {
		return nil, nil, err
	}

	return objects, sessions, nil
}

// S3ObjectStore stores blobs in an S3 bucket.
type S3ObjectStore struct {
	client *s3.Client
	bucket string
}

// NewS3ObjectStore builds the store and creates the bucket if absent.
func NewS3ObjectStore(ctx context.Context, awsCfg aws.Config, bucket string) (*S3ObjectStore, error) {
	client := s3.NewFromConfig(awsCfg)

	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		if err != nil {
			var owned *s3types.BucketAlreadyOwnedByYou
			var exists *s3types.BucketAlreadyExists
			if !errors.As(err, &owned) && !errors.As(err, &exists) {
				return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
	}

	return &S3ObjectStore{client: client, bucket: bucket}, nil
}

// PutBlob writes the blob under key, overwriting any previous object.
func (s *S3ObjectStore) PutBlob(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return storageErr("put_blob", key, err)
	}
	return nil
}

// GetBlob reads the blob stored under key.
func (s *S3ObjectStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get_blob", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, storageErr("get_blob", key, err)
	}
	return data, nil
}
