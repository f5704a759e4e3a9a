package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// Config captures the settings for the MinIO-backed blob store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Store implements ports.BlobStore on a MinIO (S3-compatible) bucket. Scan
// artifacts live under scans/<scan_id>/<filename>.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO and creates the bucket when it does not exist yet.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &Store{client: cli, bucket: cfg.Bucket}, nil
}

func objectKey(scanID, filename string) string {
	return fmt.Sprintf("scans/%s/%s", scanID, filename)
}

func (s *Store) Put(ctx context.Context, scanID, filename string, payload []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(scanID, filename),
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("%w: put object: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, scanID, filename string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(scanID, filename), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: get object: %v", domain.ErrStorageFailure, err)
	}
	defer obj.Close()

	payload, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: read object: %v", domain.ErrStorageFailure, err)
	}
	return payload, nil
}

// PresignedURL returns a time-limited GET URL. The object's existence is
// verified first so missing artifacts surface as an error instead of a
// signed 404.
func (s *Store) PresignedURL(ctx context.Context, scanID, filename string, expiry time.Duration) (string, error) {
	key := objectKey(scanID, filename)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", fmt.Errorf("%w: stat object: %v", domain.ErrStorageFailure, err)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("%w: presign object: %v", domain.ErrStorageFailure, err)
	}
	return u.String(), nil
}

var _ ports.BlobStore = (*Store)(nil)
