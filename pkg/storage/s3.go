package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// S3Storage implements Storage using Amazon S3 or S3-compatible services.
// TODO: implement with aws-sdk-go-v2 once the hosted deployment lands.
type S3Storage struct {
	bucket   string
	region   string
	endpoint string
}

// NewS3Storage validates the S3 configuration. The client itself is not
// wired up yet; every operation returns an error.
func NewS3Storage(cfg *Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.S3Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	return &S3Storage{
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		endpoint: cfg.S3Endpoint,
	}, nil
}

var errS3NotImplemented = fmt.Errorf("S3 storage is not implemented yet, use local storage")

func (s *S3Storage) Store(context.Context, string, string, io.Reader) (*DocumentInfo, error) {
	return nil, errS3NotImplemented
}

func (s *S3Storage) Open(context.Context, uuid.UUID) (io.ReadCloser, *DocumentInfo, error) {
	return nil, nil, errS3NotImplemented
}

func (s *S3Storage) GetInfo(context.Context, uuid.UUID) (*DocumentInfo, error) {
	return nil, errS3NotImplemented
}

func (s *S3Storage) List(context.Context) ([]*DocumentInfo, error) {
	return nil, errS3NotImplemented
}

func (s *S3Storage) Delete(context.Context, uuid.UUID) error {
	return errS3NotImplemented
}
