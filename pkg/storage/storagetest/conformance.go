// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package storagetest provides a shared conformance test suite for
// storage.Store implementations. Each backend should call
// RunConformanceTests from its own _test.go file.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leseb/tabconv/pkg/storage"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func record(id string, offset time.Duration) *storage.Conversion {
	return &storage.Conversion{
		ID:           id,
		Filename:     "report.csv",
		Extension:    "csv",
		Format:       "json",
		Status:       storage.StatusCompleted,
		Rows:         3,
		Columns:      2,
		InputBytes:   42,
		OutputBytes:  64,
		ResultFileID: id,
		CreatedAt:    base.Add(offset),
		Duration:     1500 * time.Microsecond,
	}
}

func ids(cs []*storage.Conversion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

// RunConformanceTests exercises a Store implementation against the shared
// contract. The newStore function is called once per sub-test to provide an
// isolated store instance.
func RunConformanceTests(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("SaveAndGet", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		want := record("conv-1", 0)
		if err := store.SaveConversion(ctx, want); err != nil {
			t.Fatalf("SaveConversion: %v", err)
		}

		got, err := store.GetConversion(ctx, "conv-1")
		if err != nil {
			t.Fatalf("GetConversion: %v", err)
		}
		if got.ID != want.ID || got.Filename != want.Filename || got.Extension != want.Extension ||
			got.Format != want.Format || got.Status != want.Status || got.Rows != want.Rows ||
			got.Columns != want.Columns || got.InputBytes != want.InputBytes ||
			got.OutputBytes != want.OutputBytes || got.ResultFileID != want.ResultFileID ||
			got.Duration != want.Duration {
			t.Errorf("GetConversion = %+v, want %+v", got, want)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		c := record("conv-1", 0)
		if err := store.SaveConversion(ctx, c); err != nil {
			t.Fatalf("SaveConversion: %v", err)
		}
		c.Status = storage.StatusFailed
		c.Error = "Could not extract data from file."
		c.ResultFileID = ""
		if err := store.SaveConversion(ctx, c); err != nil {
			t.Fatalf("SaveConversion (replace): %v", err)
		}

		got, err := store.GetConversion(ctx, "conv-1")
		if err != nil {
			t.Fatalf("GetConversion: %v", err)
		}
		if got.Status != storage.StatusFailed || got.Error != c.Error || got.ResultFileID != "" {
			t.Errorf("replacement not stored: %+v", got)
		}

		list, _, err := store.ListConversions(ctx, "", 10, "asc")
		if err != nil {
			t.Fatalf("ListConversions: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("expected 1 record after replace, got %d", len(list))
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, err := store.GetConversion(context.Background(), "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		if err := store.SaveConversion(ctx, record("conv-del", 0)); err != nil {
			t.Fatalf("SaveConversion: %v", err)
		}
		if err := store.DeleteConversion(ctx, "conv-del"); err != nil {
			t.Fatalf("DeleteConversion: %v", err)
		}
		if _, err := store.GetConversion(ctx, "conv-del"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteConversion(ctx, "conv-del"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("ListOrderAndPagination", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			c := record(fmt.Sprintf("conv-%d", i), time.Duration(i)*time.Second)
			if err := store.SaveConversion(ctx, c); err != nil {
				t.Fatalf("SaveConversion: %v", err)
			}
		}

		tests := []struct {
			name    string
			after   string
			limit   int
			order   string
			want    []string
			hasMore bool
		}{
			{"desc first page", "", 2, "desc", []string{"conv-4", "conv-3"}, true},
			{"desc after cursor", "conv-3", 2, "desc", []string{"conv-2", "conv-1"}, true},
			{"desc last page", "conv-1", 2, "desc", []string{"conv-0"}, false},
			{"asc first page", "", 3, "asc", []string{"conv-0", "conv-1", "conv-2"}, true},
			{"asc after cursor", "conv-2", 3, "asc", []string{"conv-3", "conv-4"}, false},
			{"default order is desc", "", 1, "", []string{"conv-4"}, true},
			{"exact fit", "", 5, "asc", []string{"conv-0", "conv-1", "conv-2", "conv-3", "conv-4"}, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, hasMore, err := store.ListConversions(ctx, tt.after, tt.limit, tt.order)
				if err != nil {
					t.Fatalf("ListConversions: %v", err)
				}
				if fmt.Sprint(ids(got)) != fmt.Sprint(tt.want) {
					t.Errorf("ids = %v, want %v", ids(got), tt.want)
				}
				if hasMore != tt.hasMore {
					t.Errorf("hasMore = %v, want %v", hasMore, tt.hasMore)
				}
			})
		}
	})

	t.Run("ListSameTimestamp", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		ctx := context.Background()

		for _, id := range []string{"b", "a", "c"} {
			if err := store.SaveConversion(ctx, record(id, 0)); err != nil {
				t.Fatalf("SaveConversion: %v", err)
			}
		}

		first, hasMore, err := store.ListConversions(ctx, "", 2, "asc")
		if err != nil {
			t.Fatalf("ListConversions: %v", err)
		}
		if fmt.Sprint(ids(first)) != "[a b]" || !hasMore {
			t.Fatalf("first page = %v (hasMore=%v), want [a b]", ids(first), hasMore)
		}
		rest, hasMore, err := store.ListConversions(ctx, "b", 2, "asc")
		if err != nil {
			t.Fatalf("ListConversions: %v", err)
		}
		if fmt.Sprint(ids(rest)) != "[c]" || hasMore {
			t.Errorf("second page = %v (hasMore=%v), want [c]", ids(rest), hasMore)
		}
	})

	t.Run("ListUnknownCursor", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, _, err := store.ListConversions(context.Background(), "missing", 10, "desc")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for unknown cursor, got %v", err)
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		got, hasMore, err := store.ListConversions(context.Background(), "", 10, "desc")
		if err != nil {
			t.Fatalf("ListConversions: %v", err)
		}
		if len(got) != 0 || hasMore {
			t.Errorf("expected empty list, got %v (hasMore=%v)", ids(got), hasMore)
		}
	})
}
