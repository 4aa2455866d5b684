package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rfpforge/rfpforge/internal/config"
	"github.com/rfpforge/rfpforge/internal/domain"
)

// MinioObjectStore stores blobs in a locally hosted S3-compatible service.
type MinioObjectStore struct {
	client *minio.Client
	bucket string
}

// NewMinioObjectStore connects to MinIO and creates the bucket if absent.
func NewMinioObjectStore(ctx context.Context, cfg config.StorageConfig) (*MinioObjectStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			// Tolerate a concurrent creator.
			exists, checkErr := client.BucketExists(ctx, cfg.Bucket)
			if checkErr != nil || !exists {
				return nil, fmt.Errorf("failed to create bucket: %w", err)
			}
		}
	}

	return &MinioObjectStore{client: client, bucket: cfg.Bucket}, nil
}

// PutBlob writes the blob under key, overwriting any previous object.
func (s *MinioObjectStore) PutBlob(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return storageErr("put_blob", key, err)
	}
	return nil
}

// GetBlob reads the blob stored under key.
func (s *MinioObjectStore) GetBlob(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, storageErr("get_blob", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, storageErr("get_blob", key, err)
	}
	return data, nil
}
