// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestore archives rendered conversion results so they can be
// downloaded again after the original request has completed.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leseb/tabconv/pkg/provider"
)

var (
	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidID is returned for IDs that cannot be used as a storage key.
	ErrInvalidID = errors.New("invalid file id")
)

// Providers is the registry of archive backend implementations.
// Import implementation packages with blank imports to register them:
//
//	import _ "github.com/leseb/tabconv/pkg/filestore/memory"
//	import _ "github.com/leseb/tabconv/pkg/filestore/filesystem"
//	import _ "github.com/leseb/tabconv/pkg/filestore/s3"
var Providers = provider.NewRegistry[FileStore]("archive")

// File is an archived conversion result. ID is the conversion ID.
type File struct {
	ID          string
	Filename    string // e.g. "result.pdf"
	Format      string
	ContentType string
	Bytes       int64
	SHA256      string // hex digest of Content
	Content     []byte // populated for CreateFile input; nil for GetFile output
	CreatedAt   time.Time
}

// NewFile builds a File for content, filling in the size and digest.
func NewFile(id, filename, format, contentType string, content []byte, createdAt time.Time) *File {
	sum := sha256.Sum256(content)
	return &File{
		ID:          id,
		Filename:    filename,
		Format:      format,
		ContentType: contentType,
		Bytes:       int64(len(content)),
		SHA256:      hex.EncodeToString(sum[:]),
		Content:     content,
		CreatedAt:   createdAt,
	}
}

// FileStore defines the interface for pluggable archive backends.
type FileStore interface {
	CreateFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, fileID string) (*File, error)
	GetFileContent(ctx context.Context, fileID string) ([]byte, error)
	DeleteFile(ctx context.Context, fileID string) error
	Close(ctx context.Context) error
}

// ValidateID rejects IDs that would escape a key prefix or directory.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
