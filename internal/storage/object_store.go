package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"autovision/backend/internal/config"
)

type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.cfg.BucketVideos, s.cfg.BucketFrames} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("bucket exists %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

func (s *ObjectStore) VideoBucket() string { return s.cfg.BucketVideos }
func (s *ObjectStore) FrameBucket() string { return s.cfg.BucketFrames }

func (s *ObjectStore) Put(ctx context.Context, bucket, objectKey string, reader io.Reader, size int64, contentType string) (int64, error) {
	info, err := s.client.PutObject(ctx, bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("put object %s/%s: %w", bucket, objectKey, err)
	}
	return info.Size, nil
}

func (s *ObjectStore) Get(ctx context.Context, bucket, objectKey string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, objectKey, err)
	}
	return obj, nil
}

// Download writes the object to a local file and returns bytes written.
func (s *ObjectStore) Download(ctx context.Context, bucket, objectKey, destPath string) error {
	if err := s.client.FGetObject(ctx, bucket, objectKey, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s/%s: %w", bucket, objectKey, err)
	}
	return nil
}

func (s *ObjectStore) Remove(ctx context.Context, bucket, objectKey string) error {
	if err := s.client.RemoveObject(ctx, bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, objectKey, err)
	}
	return nil
}

// PresignedGetURL returns a time-limited download URL. Used by the stream
// endpoint so the API never proxies video bytes.
func (s *ObjectStore) PresignedGetURL(ctx context.Context, bucket, objectKey string, expiry time.Duration, downloadName string) (string, error) {
	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", downloadName))
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, objectKey, expiry, params)
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, objectKey, err)
	}
	return u.String(), nil
}

func (s *ObjectStore) Client() *minio.Client {
	return s.client
}
