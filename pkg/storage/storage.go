// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage defines the conversion journal: a record of every
// conversion the service has run, kept by a pluggable backend.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/leseb/tabconv/pkg/provider"
)

// ErrNotFound is returned when a conversion record does not exist.
var ErrNotFound = errors.New("conversion not found")

// Providers is the registry of journal backend implementations.
// Import implementation packages with blank imports to register them:
//
//	import _ "github.com/leseb/tabconv/pkg/storage/memory"
//	import _ "github.com/leseb/tabconv/pkg/storage/sqlite"
//	import _ "github.com/leseb/tabconv/pkg/storage/postgres"
var Providers = provider.NewRegistry[Store]("journal")

// Status of a recorded conversion.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Conversion is one journal entry.
type Conversion struct {
	ID           string
	Filename     string
	Extension    string
	Format       string
	Status       Status
	Error        string // client-facing message when Status is failed
	Rows         int
	Columns      int
	InputBytes   int64
	OutputBytes  int64
	ResultFileID string // archive key; empty when the result was not archived
	CreatedAt    time.Time
	Duration     time.Duration
}

// Store defines the interface for journal backends.
type Store interface {
	// SaveConversion inserts the record, replacing any record with the same ID.
	SaveConversion(ctx context.Context, c *Conversion) error
	GetConversion(ctx context.Context, id string) (*Conversion, error)
	// ListConversions returns up to limit records ordered by creation time
	// ("asc" or "desc"), starting after the record with ID after. The bool
	// reports whether more records follow.
	ListConversions(ctx context.Context, after string, limit int, order string) ([]*Conversion, bool, error)
	DeleteConversion(ctx context.Context, id string) error
	Close() error
}

// Evicter is implemented by journals that drop records on their own, such
// as the bounded memory journal.
type Evicter interface {
	OnEvict(fn func(ctx context.Context, c *Conversion))
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// NormalizePage clamps a page size and order to the accepted values.
func NormalizePage(limit int, order string) (int, string) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if order != "asc" {
		order = "desc"
	}
	return limit, order
}
