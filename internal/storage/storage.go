package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/berlinbruno/podpirate/internal/config"
	"github.com/berlinbruno/podpirate/internal/logging"
	"github.com/berlinbruno/podpirate/internal/metrics"
)

// BlobStore is the contract the services consume. Media blob references in
// the documents are plain object paths; the store turns them into time-limited
// signed URLs and never exposes blob bytes to the core.
type BlobStore interface {
	SignedUploadURL(ctx context.Context, objectPath string) (string, error)
	SignedDownloadURL(ctx context.Context, objectPath string) (string, error)
	Exists(ctx context.Context, objectPath string) (bool, error)
	Delete(ctx context.Context, objectPath string) error
}

// Storage provides object storage operations backed by MinIO
type Storage struct {
	client         *minio.Client
	bucketName     string
	uploadExpiry   time.Duration
	downloadExpiry time.Duration
	logger         *logging.Logger
}

// New creates a new storage client and ensures the bucket exists
func New(cfg config.StorageConfig, logger *logging.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:         client,
		bucketName:     cfg.BucketName,
		uploadExpiry:   cfg.UploadExpiry,
		downloadExpiry: cfg.DownloadExpiry,
		logger:         logger,
	}, nil
}

// SignedUploadURL returns a presigned PUT URL with a short write expiry.
// Clients upload directly to the object store; the API never proxies bytes.
func (s *Storage) SignedUploadURL(ctx context.Context, objectPath string) (string, error) {
	url, err := s.client.PresignedPutObject(ctx, s.bucketName, objectPath, s.uploadExpiry)
	s.record("presign_upload", objectPath, err)
	if err != nil {
		return "", fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return url.String(), nil
}

// SignedDownloadURL returns a presigned GET URL with a longer read expiry.
func (s *Storage) SignedDownloadURL(ctx context.Context, objectPath string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucketName, objectPath, s.downloadExpiry, nil)
	s.record("presign_download", objectPath, err)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}
	return url.String(), nil
}

// Exists reports whether the object is actually present in the bucket, not
// just referenced by a document.
func (s *Storage) Exists(ctx context.Context, objectPath string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, objectPath, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			s.record("stat", objectPath, nil)
			return false, nil
		}
		s.record("stat", objectPath, err)
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	s.record("stat", objectPath, nil)
	return true, nil
}

// Delete removes an object. Deleting an absent object is not an error, which
// keeps cascade retries safe.
func (s *Storage) Delete(ctx context.Context, objectPath string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, objectPath, minio.RemoveObjectOptions{})
	s.record("delete", objectPath, err)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// record emits the structured log line and the operation counter for a
// blob store call.
func (s *Storage) record(operation, objectPath string, err error) {
	s.logger.LogStorageOperation(operation, objectPath, err)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StorageOperationsTotal.WithLabelValues(operation, status).Inc()
}
