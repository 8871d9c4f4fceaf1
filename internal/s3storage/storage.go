// Package s3storage stores exported assets in an S3-compatible bucket.
package s3storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/designexport/internal/config"
	"github.com/dharsanguruparan/designexport/internal/model"
)

// Storage wraps MinIO/S3 interactions for exported asset binaries.
type Storage struct {
	client  *minio.Client
	bucket  string
	region  string
	baseURL string
}

// New creates a MinIO client from the Config. No request is made until the
// storage is used.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{
		client:  client,
		bucket:  cfg.S3Bucket,
		region:  cfg.S3Region,
		baseURL: strings.TrimSuffix(client.EndpointURL().String(), "/"),
	}, nil
}

// EnsureBucket makes sure the export bucket exists before use.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Upload writes data to path with the given content type.
func (s *Storage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("upload object %s: %w", path, err)
	}
	return nil
}

// PublicURL returns the path-style URL of an object.
func (s *Storage) PublicURL(path string) string {
	return s.baseURL + "/" + s.bucket + "/" + path
}

// PathFromURL reverses PublicURL.
func (s *Storage) PathFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse file url: %w", err)
	}
	path, ok := strings.CutPrefix(u.Path, "/"+s.bucket+"/")
	if !ok || path == "" {
		return "", fmt.Errorf("file url %q is not in bucket %s", fileURL, s.bucket)
	}
	return path, nil
}

// Remove deletes the given objects. S3 treats missing keys as already removed.
func (s *Storage) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if err := s.client.RemoveObject(ctx, s.bucket, p, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object %s: %w", p, err)
		}
	}
	return nil
}

// Get fetches an object's bytes and content type.
func (s *Storage) Get(ctx context.Context, path string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object %s: %w", path, err)
	}
	defer obj.Close()
	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", fmt.Errorf("object %s: %w", path, model.ErrNotFound)
		}
		return nil, "", fmt.Errorf("stat object %s: %w", path, err)
	}
	buf, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read object %s: %w", path, err)
	}
	return buf, info.ContentType, nil
}

// PresignURL returns a signed GET URL for an object.
func (s *Storage) PresignURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", path, err)
	}
	return u.String(), nil
}
