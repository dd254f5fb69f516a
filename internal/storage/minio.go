// Package storage keeps car images in a MinIO (S3 compatible) bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/iliyamo/carmarket/internal/config"
)

// KeyPrefix is the folder every car image is stored under.
const KeyPrefix = "cars_images/"

var ErrNotFound = errors.New("image not found")

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// AllowedImage reports whether filename has an accepted image extension.
func AllowedImage(filename string) bool {
	return imageExts[strings.ToLower(filepath.Ext(filename))]
}

// ObjectKey returns a fresh key for an upload, keeping the extension.
func ObjectKey(filename string) string {
	return KeyPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

type MinIOStore struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewMinIOStore connects and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) (*MinIOStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", cfg.Endpoint, err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("created image bucket", zap.String("bucket", cfg.Bucket))
	}
	return &MinIOStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Put uploads r under a new key derived from filename and returns the key.
func (s *MinIOStore) Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := ObjectKey(filename)
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	s.log.Debug("image stored", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return key, nil
}

// Open streams the object stored under key.
func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !strings.HasPrefix(path.Clean(key), KeyPrefix) {
		return nil, "", ErrNotFound
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", key, err)
	}
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("stat %s: %w", key, err)
	}
	return obj, st.ContentType, nil
}

// Remove deletes key. Missing objects are not an error.
func (s *MinIOStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
