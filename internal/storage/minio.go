package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Serge13790/Site-Marcheurs/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultContentType = "application/octet-stream"

// ObjectStore is the minimal object-storage surface used by the photo and hike
// services. *MinioStore satisfies it; tests use fakes.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, object io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}

type minioClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type MinioStore struct {
	client  minioClient
	baseURL string
}

func NewMinioStore(cfg config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStore{
		client:  client,
		baseURL: strings.TrimRight(cfg.StorageBaseURL, "/"),
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, bucket, key string, object io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s.client.PutObject(ctx, bucket, key, object, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *MinioStore) Remove(ctx context.Context, bucket, key string) error {
	return s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

// PublicURL derives the public address of an object in a public-read bucket.
func (s *MinioStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/" + bucket + "/" + key
}
