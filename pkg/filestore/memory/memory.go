// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/leseb/tabconv/pkg/filestore"
)

func init() {
	filestore.Providers.Register("memory", func(_ context.Context, _ map[string]string) (filestore.FileStore, error) {
		return New(), nil
	})
}

// compile-time check
var _ filestore.FileStore = (*Store)(nil)

// Store keeps archived results in process memory.
type Store struct {
	mu    sync.RWMutex
	files map[string]*filestore.File
}

func New() *Store {
	return &Store{
		files: make(map[string]*filestore.File),
	}
}

// CreateFile stores a copy of file, replacing any file with the same ID.
func (s *Store) CreateFile(_ context.Context, file *filestore.File) error {
	if err := filestore.ValidateID(file.ID); err != nil {
		return err
	}
	cp := *file
	cp.Content = append([]byte(nil), file.Content...)

	s.mu.Lock()
	s.files[file.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *Store) GetFile(_ context.Context, fileID string) (*filestore.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
	}
	cp := *file
	cp.Content = nil
	return &cp, nil
}

func (s *Store) GetFileContent(_ context.Context, fileID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
	}
	return append([]byte(nil), file.Content...), nil
}

func (s *Store) DeleteFile(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[fileID]; !ok {
		return fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
	}
	delete(s.files, fileID)
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
