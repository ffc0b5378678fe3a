// Package objectstore implements the remote attachment gateway on top of any
// S3-compatible endpoint. It knows nothing about todo records; it turns
// byte buffers into durable locators and back.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/config"
)

// DeletionJournal records locators whose remote removal failed so a
// background sweeper can retry them later.
type DeletionJournal interface {
	Record(locator string) error
}

// Store uploads and removes attachment objects in a fixed bucket.
type Store struct {
	client     *minio.Client
	bucket     string
	prefix     string
	publicBase string
	journal    DeletionJournal
	logger     *zap.Logger
}

// New connects to the configured endpoint and ensures the bucket exists.
func New(ctx context.Context, cfg config.StorageConfig, journal DeletionJournal, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	store := &Store{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		publicBase: publicBase,
		journal:    journal,
		logger:     logger,
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	logger.Info("connected to object store",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))
	return store, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket check: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("bucket create: %w", err)
	}
	return nil
}

// Upload streams the in-memory buffer to the store and returns its public
// locator. Object keys are extensionless so the locator's last two path
// segments always recover the key.
func (s *Store) Upload(ctx context.Context, data []byte, contentType string, kind domain.Kind) (string, error) {
	if len(data) == 0 {
		return "", domain.NewError(domain.ErrCodeUploadFailed, "refusing to upload an empty buffer")
	}

	key := s.prefix + "/" + uuid.NewString()
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"kind": string(kind)},
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", domain.WrapError(domain.ErrCodeUploadFailed, "object upload failed", err)
	}

	locator := fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, key)
	s.logger.Debug("object uploaded",
		zap.String("key", key),
		zap.String("kind", string(kind)),
		zap.Int("bytes", len(data)))
	return locator, nil
}

// Delete removes the object a locator points at. The call is advisory: any
// failure is logged and journaled for the cleanup sweeper, never returned.
// Record mutations must not block on storage cleanup.
func (s *Store) Delete(ctx context.Context, locator string) {
	if locator == "" {
		return
	}

	key, err := ObjectKey(locator)
	if err != nil {
		s.logger.Warn("undeletable locator", zap.String("locator", locator), zap.Error(err))
		return
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("object delete failed, journaling for retry",
			zap.String("key", key),
			zap.Error(err))
		if s.journal != nil {
			if jerr := s.journal.Record(locator); jerr != nil {
				s.logger.Error("failed to journal deletion", zap.String("locator", locator), zap.Error(jerr))
			}
		}
		return
	}

	s.logger.Debug("object deleted", zap.String("key", key))
}

// Remove issues a single removal attempt and surfaces the error. Used by the
// cleanup sweeper, which owns its own retry policy.
func (s *Store) Remove(ctx context.Context, locator string) error {
	key, err := ObjectKey(locator)
	if err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// Healthy probes bucket visibility for the connection monitor.
func (s *Store) Healthy(ctx context.Context) bool {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	return err == nil && exists
}
