// Package storage provides source-document storage with local and S3
// implementations. Uploaded statements are kept until their extraction run
// completes so failed runs can be retried without a re-upload.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// DocumentInfo contains metadata about a stored source document.
type DocumentInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // internal storage path
	StoredAt    time.Time `json:"stored_at"`
}

// Storage defines the interface for source-document operations.
type Storage interface {
	// Store saves a document and returns its metadata.
	Store(ctx context.Context, filename string, contentType string, r io.Reader) (*DocumentInfo, error)

	// Open returns a reader over a stored document and its metadata.
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *DocumentInfo, error)

	// GetInfo returns metadata without opening the document.
	GetInfo(ctx context.Context, id uuid.UUID) (*DocumentInfo, error)

	// List returns every stored document.
	List(ctx context.Context) ([]*DocumentInfo, error)

	// Delete removes a document and its metadata.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReadDocument loads a full document into memory. The PDF reader needs random
// access, so extraction always goes through this helper.
func ReadDocument(ctx context.Context, s Storage, id uuid.UUID) ([]byte, *DocumentInfo, error) {
	rc, info, err := s.Open(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, err
	}
	return data, info, nil
}

// Type identifies the storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeS3    Type = "s3"
)

// Config holds storage configuration.
type Config struct {
	Type Type

	// Local storage config.
	LocalPath string

	// S3 storage config (prepared for future use).
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string // for S3-compatible services (MinIO, etc.)
}

// New creates a Storage implementation based on configuration.
func New(cfg *Config) (Storage, error) {
	switch cfg.Type {
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeLocal:
		fallthrough
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}
