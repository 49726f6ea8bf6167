// Package storage uploads images to object storage and hands back public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"therapy-admin-server/internal/config"
)

// ObjectStore is the capability the handlers depend on.
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// Entity types used as the first path segment of uploaded objects.
const (
	EntityAvatar  = ""
	EntityModule  = "modules"
	EntityArticle = "articles"
)

// ObjectPath builds {entityType}/{authorID}/{unixMillis}.{ext}. Avatars have no
// entity prefix.
func ObjectPath(entityType, authorID, fileName string, at time.Time) string {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	if ext == "" {
		ext = "bin"
	}
	name := fmt.Sprintf("%d.%s", at.UnixMilli(), strings.ToLower(ext))
	if entityType == EntityAvatar {
		return path.Join(authorID, name)
	}
	return path.Join(entityType, authorID, name)
}

// Client is a MinIO-backed ObjectStore.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

// NewClient creates a MinIO client for the configured bucket.
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &Client{mc: mc, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context, logger *slog.Logger) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		logger.Info("created bucket", "bucket", c.bucket)
	}
	return nil
}

// Upload stores an object under key.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the URL under which key is served.
func (c *Client) PublicURL(key string) string {
	return c.publicURL + "/" + strings.TrimLeft(key, "/")
}
