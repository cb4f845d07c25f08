package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/njprem/TourBook_APP_BackEnd/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// Storage puts user photos and tour covers into MinIO buckets.
type Storage struct {
	client    *minio.Client
	publicURL string
}

// NewStorage serves object URLs from publicURL, falling back to the client endpoint.
func NewStorage(client *minio.Client, publicURL string) *Storage {
	base := strings.TrimRight(strings.TrimSpace(publicURL), "/")
	if base == "" && client != nil {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}
	return &Storage{client: client, publicURL: base}
}

// EnsureBuckets creates missing buckets with a public-read policy.
func (s *Storage) EnsureBuckets(ctx context.Context, buckets ...string) error {
	for _, bucket := range buckets {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("minio: check bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("minio: create bucket %s: %w", bucket, err)
		}
		if err := s.client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return fmt.Errorf("minio: bucket policy %s: %w", bucket, err)
		}
	}
	return nil
}

func (s *Storage) Put(ctx context.Context, obj ports.Object) (string, error) {
	if obj.Body == nil {
		return "", fmt.Errorf("minio: empty object body")
	}
	_, err := s.client.PutObject(ctx, obj.Bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return "", fmt.Errorf("minio: put %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	return s.ObjectURL(obj.Bucket, obj.Key), nil
}

func (s *Storage) ObjectURL(bucket, key string) string {
	return s.publicURL + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
