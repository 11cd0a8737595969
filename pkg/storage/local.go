package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem. Each document
// is stored next to a JSON metadata sidecar keyed by document ID.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Store saves a document and returns its metadata.
func (s *LocalStorage) Store(_ context.Context, filename string, contentType string, r io.Reader) (*DocumentInfo, error) {
	id := uuid.New()

	storedName := fmt.Sprintf("%s_%s", id.String()[:8], sanitizeFilename(filename))
	path := filepath.Join(s.basePath, storedName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create document file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	info := &DocumentInfo{
		ID:          id,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedName,
		StoredAt:    time.Now(),
	}

	if err := s.saveMetadata(info); err != nil {
		os.Remove(path)
		return nil, err
	}
	return info, nil
}

// Open returns a reader over a stored document and its metadata.
func (s *LocalStorage) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *DocumentInfo, error) {
	info, err := s.GetInfo(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.basePath, info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, info, nil
}

// GetInfo returns metadata without opening the document.
func (s *LocalStorage) GetInfo(_ context.Context, id uuid.UUID) (*DocumentInfo, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s not found", id)
		}
		return nil, fmt.Errorf("failed to read document metadata: %w", err)
	}

	info := &DocumentInfo{}
	if err := json.Unmarshal(data, info); err != nil {
		return nil, fmt.Errorf("failed to parse document metadata: %w", err)
	}
	return info, nil
}

// List returns every stored document, newest first.
func (s *LocalStorage) List(_ context.Context) ([]*DocumentInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage directory: %w", err)
	}

	var infos []*DocumentInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name()))
		if err != nil {
			continue
		}
		info := &DocumentInfo{}
		if err := json.Unmarshal(data, info); err != nil {
			continue
		}
		infos = append(infos, info)
	}

	for i := 0; i < len(infos); i++ {
		for j := i + 1; j < len(infos); j++ {
			if infos[j].StoredAt.After(infos[i].StoredAt) {
				infos[i], infos[j] = infos[j], infos[i]
			}
		}
	}
	return infos, nil
}

// Delete removes a document and its metadata.
func (s *LocalStorage) Delete(ctx context.Context, id uuid.UUID) error {
	info, err := s.GetInfo(ctx, id)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.basePath, info.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := os.Remove(s.metadataPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document metadata: %w", err)
	}
	return nil
}

func (s *LocalStorage) metadataPath(id uuid.UUID) string {
	return filepath.Join(s.basePath, id.String()+".meta.json")
}

func (s *LocalStorage) saveMetadata(info *DocumentInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode document metadata: %w", err)
	}
	if err := os.WriteFile(s.metadataPath(info.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to save document metadata: %w", err)
	}
	return nil
}

// sanitizeFilename strips path separators and characters that are unsafe on
// common filesystems.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	name = replacer.Replace(name)
	if name == "" || name == "." {
		name = "document"
	}
	return name
}
