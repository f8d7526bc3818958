// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leseb/tabconv/pkg/storage"
	"github.com/leseb/tabconv/pkg/storage/sqlite"
	"github.com/leseb/tabconv/pkg/storage/storagetest"
)

func TestSQLiteConformance(t *testing.T) {
	storagetest.RunConformanceTests(t, func(t *testing.T) storage.Store {
		store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
		if err != nil {
			t.Fatalf("sqlite.New: %v", err)
		}
		return store
	})
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := sqlite.New(ctx, path)
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	created := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	if err := s.SaveConversion(ctx, &storage.Conversion{ID: "conv-1", CreatedAt: created}); err != nil {
		t.Fatalf("SaveConversion: %v", err)
	}
	s.Close()

	s, err = sqlite.New(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.GetConversion(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetConversion: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}
