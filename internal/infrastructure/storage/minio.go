package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/config"
)

// presignExpiry is the longest lifetime S3 allows for a presigned URL
const presignExpiry = 7 * 24 * time.Hour

// MinIOStore keeps reports in an S3-compatible bucket under a folder prefix
type MinIOStore struct {
	client *minio.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewMinIOStore creates the client and makes sure the bucket exists
func NewMinIOStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*MinIOStore, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &MinIOStore{
		client: minioClient,
		bucket: cfg.BucketName,
		prefix: normalizePrefix(cfg.Prefix),
		logger: logger,
	}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return store, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (m *MinIOStore) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	m.logger.Info("🪣 Report bucket created", zap.String("bucket", m.bucket))
	return nil
}

// Find returns the base names of objects under the prefix that contain
// entityKey
func (m *MinIOStore) Find(ctx context.Context, entityKey string) ([]string, error) {
	if entityKey == "" {
		return nil, nil
	}
	names, err := m.listFiles(ctx)
	if err != nil {
		return nil, err
	}
	var found []string
	for _, name := range names {
		if base := path.Base(name); strings.Contains(base, entityKey) {
			found = append(found, base)
		}
	}
	return found, nil
}

// Upload stores the report and returns a presigned link, or the object path
// when presigning fails
func (m *MinIOStore) Upload(ctx context.Context, report *entities.Report) (string, error) {
	objectName := m.prefix + report.Filename
	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(report.Body), int64(len(report.Body)), minio.PutObjectOptions{
		ContentType: report.MimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, presignExpiry, nil)
	if err != nil {
		m.logger.Warn("⚠️ Failed to presign report URL", zap.String("object", objectName), zap.Error(err))
		return m.bucket + "/" + objectName, nil
	}
	return url.String(), nil
}

func (m *MinIOStore) listFiles(ctx context.Context) ([]string, error) {
	var files []string
	objectCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    m.prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		files = append(files, object.Key)
	}
	return files, nil
}
