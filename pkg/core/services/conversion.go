// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/tabconv/pkg/core/tabular"
	"github.com/leseb/tabconv/pkg/extractor"
	"github.com/leseb/tabconv/pkg/filestore"
	"github.com/leseb/tabconv/pkg/observability/logging"
	"github.com/leseb/tabconv/pkg/observability/metrics"
	"github.com/leseb/tabconv/pkg/renderer"
	"github.com/leseb/tabconv/pkg/storage"
)

var (
	// ErrEmptyResult is returned when extraction produced no columns or no rows.
	ErrEmptyResult = errors.New("no tabular data extracted")
	// ErrRenderFailed wraps a renderer failure on a non-empty table.
	ErrRenderFailed = errors.New("render failed")
	// ErrJournalDisabled is returned by the journal accessors when no
	// journal backend is configured.
	ErrJournalDisabled = errors.New("conversion journal is disabled")
	// ErrNotArchived is returned when a conversion has no archived result.
	ErrNotArchived = errors.New("conversion result is not archived")
)

// Error is a rejected conversion. Message is safe to show to the client.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Request is one uploaded file to convert.
type Request struct {
	Filename string
	Content  []byte
	Format   string
}

// Result is a successful conversion.
type Result struct {
	ID      string
	Output  *renderer.Output
	Rows    int
	Columns int
}

// ConversionService runs extraction and rendering and records the outcome.
// The journal, archive and metrics are optional; nil disables each.
type ConversionService struct {
	logger   *logging.Logger
	renderer *renderer.Renderer
	journal  storage.Store
	archive  filestore.FileStore
	metrics  *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// NewConversionService creates a ConversionService.
func NewConversionService(logger *logging.Logger, r *renderer.Renderer, journal storage.Store, archive filestore.FileStore, m *metrics.Metrics) *ConversionService {
	s := &ConversionService{
		logger:   logger,
		renderer: r,
		journal:  journal,
		archive:  archive,
		metrics:  m,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	if ev, ok := journal.(storage.Evicter); ok && archive != nil {
		ev.OnEvict(s.dropResult)
	}
	return s
}

// dropResult removes the archived output of a record the journal evicted.
func (s *ConversionService) dropResult(ctx context.Context, rec *storage.Conversion) {
	if rec.ResultFileID == "" {
		return
	}
	if err := s.archive.DeleteFile(ctx, rec.ResultFileID); err != nil && !errors.Is(err, filestore.ErrFileNotFound) {
		s.logger.Warn("failed to drop evicted result", "id", rec.ID, "error", err)
	}
}

// Extension returns the text after the last "." of filename, or the whole
// name when it has no dot.
func Extension(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i+1:]
	}
	return filename
}

// ClientMessage maps a conversion error onto the message shown to clients.
func ClientMessage(err error, ext, format string) string {
	switch {
	case errors.Is(err, extractor.ErrLegacyDoc):
		return "ERROR: .doc format is not supported for in-memory structured data extraction without external tools."
	case errors.Is(err, extractor.ErrUnsupportedExtension):
		return "Unsupported file extension: " + ext
	case errors.Is(err, renderer.ErrUnsupportedFormat):
		return "Unsupported output format: " + format
	case errors.Is(err, ErrEmptyResult):
		return "Could not extract data from file."
	default:
		return "Could not render result."
	}
}

// Convert extracts a table from req.Content and renders it as req.Format.
// Checks run in order: extension, format, extraction, emptiness, rendering.
// Every failure is returned as an *Error.
func (s *ConversionService) Convert(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	ext := Extension(req.Filename)
	rec := &storage.Conversion{
		ID:         s.newID(),
		Filename:   req.Filename,
		Extension:  ext,
		Format:     req.Format,
		InputBytes: int64(len(req.Content)),
		CreatedAt:  start.UTC().Truncate(time.Microsecond),
	}
	s.metrics.ObserveUpload(rec.InputBytes)

	tbl, out, err := s.run(ext, req)
	rec.Duration = s.now().Sub(start)

	if err != nil {
		cerr := &Error{Message: ClientMessage(err, ext, req.Format), Err: err}
		rec.Status = storage.StatusFailed
		rec.Error = cerr.Message
		s.logger.Info("conversion rejected",
			"id", rec.ID, "filename", req.Filename, "extension", ext, "format", req.Format,
			"reason", err.Error())
		s.finish(ctx, rec)
		return nil, cerr
	}

	rec.Status = storage.StatusCompleted
	rec.Rows = tbl.Len()
	rec.Columns = tbl.Width()
	rec.OutputBytes = int64(len(out.Body))
	if s.archiveResult(ctx, rec, out) {
		rec.ResultFileID = rec.ID
	}
	s.logger.Info("conversion completed",
		"id", rec.ID, "filename", req.Filename, "extension", ext, "format", req.Format,
		"rows", rec.Rows, "columns", rec.Columns, "duration", rec.Duration)
	s.finish(ctx, rec)

	return &Result{ID: rec.ID, Output: out, Rows: rec.Rows, Columns: rec.Columns}, nil
}

func (s *ConversionService) run(ext string, req Request) (*tabular.Table, *renderer.Output, error) {
	if err := extractor.Check(ext); err != nil {
		return nil, nil, err
	}
	format, err := renderer.ParseFormat(req.Format)
	if err != nil {
		return nil, nil, err
	}

	tbl, err := extractor.Extract(req.Content, ext)
	if err != nil {
		// Parser failures are reported like an empty document.
		s.logger.Debug("extraction failed", "extension", ext, "error", err)
	}
	if tbl.Empty() {
		return nil, nil, ErrEmptyResult
	}

	out, err := s.renderer.Render(format, tbl)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return tbl, out, nil
}

func (s *ConversionService) archiveResult(ctx context.Context, rec *storage.Conversion, out *renderer.Output) bool {
	if s.archive == nil {
		return false
	}
	name := out.Filename
	if name == "" {
		name = "result." + rec.Format
	}
	f := filestore.NewFile(rec.ID, name, rec.Format, out.ContentType, out.Body, rec.CreatedAt)
	if err := s.archive.CreateFile(ctx, f); err != nil {
		s.logger.Warn("failed to archive result", "id", rec.ID, "error", err)
		return false
	}
	return true
}

// finish records the outcome in the journal and metrics. Journal failures
// never fail the conversion.
func (s *ConversionService) finish(ctx context.Context, rec *storage.Conversion) {
	s.metrics.ObserveConversion(metricLabel(rec.Extension, extractor.Supports(rec.Extension) || rec.Extension == "doc"),
		metricLabel(rec.Format, isFormat(rec.Format)), string(rec.Status), rec.Duration)

	if s.journal == nil {
		return
	}
	if err := s.journal.SaveConversion(ctx, rec); err != nil {
		s.logger.Warn("failed to record conversion", "id", rec.ID, "error", err)
	}
}

// metricLabel keeps client-controlled values out of label sets.
func metricLabel(v string, known bool) string {
	if known {
		return v
	}
	return "other"
}

func isFormat(s string) bool {
	_, err := renderer.ParseFormat(s)
	return err == nil
}

// GetConversion returns one journal record.
func (s *ConversionService) GetConversion(ctx context.Context, id string) (*storage.Conversion, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.GetConversion(ctx, id)
}

// ListConversions returns a page of journal records.
func (s *ConversionService) ListConversions(ctx context.Context, after string, limit int, order string) ([]*storage.Conversion, bool, error) {
	if s.journal == nil {
		return nil, false, ErrJournalDisabled
	}
	return s.journal.ListConversions(ctx, after, limit, order)
}

// GetResult returns the archived output of a conversion.
func (s *ConversionService) GetResult(ctx context.Context, id string) (*filestore.File, []byte, error) {
	rec, err := s.GetConversion(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rec.ResultFileID == "" || s.archive == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotArchived, id)
	}

	meta, err := s.archive.GetFile(ctx, rec.ResultFileID)
	if err != nil {
		if errors.Is(err, filestore.ErrFileNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotArchived, id)
		}
		return nil, nil, err
	}
	content, err := s.archive.GetFileContent(ctx, rec.ResultFileID)
	if err != nil {
		return nil, nil, err
	}
	return meta, content, nil
}

// DeleteConversion removes a journal record and its archived result.
func (s *ConversionService) DeleteConversion(ctx context.Context, id string) error {
	rec, err := s.GetConversion(ctx, id)
	if err != nil {
		return err
	}
	if rec.ResultFileID != "" && s.archive != nil {
		if err := s.archive.DeleteFile(ctx, rec.ResultFileID); err != nil && !errors.Is(err, filestore.ErrFileNotFound) {
			return fmt.Errorf("delete archived result: %w", err)
		}
	}
	return s.journal.DeleteConversion(ctx, id)
}
