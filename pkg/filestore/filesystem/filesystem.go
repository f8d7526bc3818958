// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leseb/tabconv/pkg/filestore"
)

func init() {
	filestore.Providers.Register("filesystem", func(_ context.Context, params map[string]string) (filestore.FileStore, error) {
		dir := params["base_dir"]
		if dir == "" {
			return nil, fmt.Errorf("filesystem archive: base_dir is required")
		}
		return New(dir)
	})
}

// compile-time check
var _ filestore.FileStore = (*Store)(nil)

// resultMetadata is the on-disk representation stored in metadata.json.
type resultMetadata struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Format      string    `json:"format"`
	ContentType string    `json:"content_type"`
	Bytes       int64     `json:"bytes"`
	SHA256      string    `json:"sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store archives results on the local filesystem.
//
// Layout:
//
//	<baseDir>/<conversion_id>/content
//	<baseDir>/<conversion_id>/metadata.json
type Store struct {
	baseDir string
}

// New creates a filesystem-backed Store, creating baseDir if it does not exist.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) dir(fileID string) (string, error) {
	if err := filestore.ValidateID(fileID); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, fileID), nil
}

// CreateFile writes content and metadata, each through a temp file and a
// rename so readers never observe a partial write.
func (s *Store) CreateFile(_ context.Context, file *filestore.File) error {
	dir, err := s.dir(file.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, "content"), file.Content); err != nil {
		return fmt.Errorf("write content: %w", err)
	}

	metaBytes, err := json.Marshal(resultMetadata{
		ID:          file.ID,
		Filename:    file.Filename,
		Format:      file.Format,
		ContentType: file.ContentType,
		Bytes:       file.Bytes,
		SHA256:      file.SHA256,
		CreatedAt:   file.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "metadata.json"), metaBytes); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *Store) GetFile(_ context.Context, fileID string) (*filestore.File, error) {
	dir, err := s.dir(fileID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta resultMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal metadata for %s: %w", fileID, err)
	}
	return &filestore.File{
		ID:          meta.ID,
		Filename:    meta.Filename,
		Format:      meta.Format,
		ContentType: meta.ContentType,
		Bytes:       meta.Bytes,
		SHA256:      meta.SHA256,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

func (s *Store) GetFileContent(_ context.Context, fileID string) ([]byte, error) {
	dir, err := s.dir(fileID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "content"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// DeleteFile removes the result directory and everything in it.
func (s *Store) DeleteFile(_ context.Context, fileID string) error {
	dir, err := s.dir(fileID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return fmt.Errorf("stat result dir: %w", err)
	}
	return os.RemoveAll(dir)
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
