// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestoretest provides a shared conformance test suite for
// filestore.FileStore implementations. Each backend should call
// RunConformanceTests from its own _test.go file.
package filestoretest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leseb/tabconv/pkg/filestore"
)

func result(id string, content string) *filestore.File {
	return filestore.NewFile(id, "result.csv", "csv", "text/csv", []byte(content),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

// RunConformanceTests exercises a FileStore implementation against the shared
// contract. The newStore function is called once per sub-test to provide an
// isolated store instance.
func RunConformanceTests(t *testing.T, newStore func(t *testing.T) filestore.FileStore) {
	t.Helper()

	t.Run("CreateAndGet", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		f := result("conv-abc123", "a,b\n1,2\n")
		if err := store.CreateFile(ctx, f); err != nil {
			t.Fatalf("CreateFile: %v", err)
		}

		got, err := store.GetFile(ctx, f.ID)
		if err != nil {
			t.Fatalf("GetFile: %v", err)
		}
		if got.ID != f.ID || got.Filename != f.Filename || got.Format != f.Format ||
			got.ContentType != f.ContentType || got.Bytes != f.Bytes || got.SHA256 != f.SHA256 {
			t.Errorf("GetFile returned unexpected metadata: %+v", got)
		}
		if !got.CreatedAt.Equal(f.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, f.CreatedAt)
		}
		if got.Content != nil {
			t.Errorf("expected Content to be nil from GetFile, got %d bytes", len(got.Content))
		}
	})

	t.Run("GetContent", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		content := "%PDF-1.3 not really"
		f := filestore.NewFile("conv-content1", "result.pdf", "pdf", "application/pdf", []byte(content), time.Now())
		if err := store.CreateFile(ctx, f); err != nil {
			t.Fatalf("CreateFile: %v", err)
		}

		got, err := store.GetFileContent(ctx, f.ID)
		if err != nil {
			t.Fatalf("GetFileContent: %v", err)
		}
		if string(got) != content {
			t.Errorf("content mismatch: got %q, want %q", got, content)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		if err := store.CreateFile(ctx, result("conv-over", "old")); err != nil {
			t.Fatalf("CreateFile: %v", err)
		}
		if err := store.CreateFile(ctx, result("conv-over", "new")); err != nil {
			t.Fatalf("CreateFile (overwrite): %v", err)
		}

		got, err := store.GetFileContent(ctx, "conv-over")
		if err != nil {
			t.Fatalf("GetFileContent: %v", err)
		}
		if string(got) != "new" {
			t.Errorf("content = %q, want %q", got, "new")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		f := result("conv-del1", "del")
		if err := store.CreateFile(ctx, f); err != nil {
			t.Fatalf("CreateFile: %v", err)
		}
		if err := store.DeleteFile(ctx, f.ID); err != nil {
			t.Fatalf("DeleteFile: %v", err)
		}

		if _, err := store.GetFile(ctx, f.ID); !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound after delete, got: %v", err)
		}
		if _, err := store.GetFileContent(ctx, f.ID); !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound for content after delete, got: %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		if _, err := store.GetFile(ctx, "conv-nonexistent"); !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("GetFile expected ErrFileNotFound, got: %v", err)
		}
		if _, err := store.GetFileContent(ctx, "conv-nonexistent"); !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("GetFileContent expected ErrFileNotFound, got: %v", err)
		}
		if err := store.DeleteFile(ctx, "conv-nonexistent"); !errors.Is(err, filestore.ErrFileNotFound) {
			t.Errorf("DeleteFile expected ErrFileNotFound, got: %v", err)
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())

		for _, id := range []string{"", "..", "a/b", `a\b`} {
			if err := store.CreateFile(context.Background(), result(id, "x")); !errors.Is(err, filestore.ErrInvalidID) {
				t.Errorf("CreateFile(%q) expected ErrInvalidID, got: %v", id, err)
			}
		}
	})
}
