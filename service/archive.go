package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/LACSistemas/EscriturasNew-sub000/config"
)

// ArchiveService keeps copies of uploaded documents in MinIO, keyed by
// session and step, so the cartório can audit what was presented after the
// session itself is gone.
type ArchiveService struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewArchiveService(cfg *config.MinioConfig) (*ArchiveService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ArchiveService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist and sets an expiration
// rule so archived documents age out after the configured retention period.
func (s *ArchiveService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	if s.config.ExpireDays > 0 {
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{
			{
				ID:     "expire-session-documents",
				Status: "Enabled",
				RuleFilter: lifecycle.Filter{
					Prefix: "sessions/",
				},
				Expiration: lifecycle.Expiration{
					Days: lifecycle.ExpirationDays(s.config.ExpireDays),
				},
			},
		}
		if err := s.client.SetBucketLifecycle(ctx, s.bucket, lc); err != nil {
			return fmt.Errorf("failed to set bucket lifecycle: %w", err)
		}
	}

	return nil
}

// objectName builds the archive key for one uploaded document. The original
// filename is kept only for its extension.
func objectName(sessionID, step, filename string) string {
	ext := path.Ext(filename)
	return fmt.Sprintf("sessions/%s/%s%s", sessionID, step, ext)
}

// StoreDocument archives one uploaded document under the session it belongs
// to and returns the object name.
func (s *ArchiveService) StoreDocument(ctx context.Context, sessionID, step, filename string, data []byte, contentType string) (string, error) {
	name := objectName(sessionID, step, filename)
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive document: %w", err)
	}

	return name, nil
}

// PresignedURL generates a presigned URL for an archived document with the
// configured expiration
func (s *ArchiveService) PresignedURL(ctx context.Context, name string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, name, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// RemoveSessionDocuments deletes every archived document of a session.
func (s *ArchiveService) RemoveSessionDocuments(ctx context.Context, sessionID string) error {
	prefix := fmt.Sprintf("sessions/%s/", sessionID)
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objects {
		if object.Err != nil {
			return fmt.Errorf("failed to list session documents: %w", object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
	}

	return nil
}
