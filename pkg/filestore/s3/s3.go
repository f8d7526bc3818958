// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/leseb/tabconv/pkg/filestore"
)

func init() {
	filestore.Providers.Register("s3", func(ctx context.Context, params map[string]string) (filestore.FileStore, error) {
		return New(ctx, Options{
			Bucket:   params["bucket"],
			Region:   params["region"],
			Prefix:   params["prefix"],
			Endpoint: params["endpoint"],
		})
	})
}

// compile-time check
var _ filestore.FileStore = (*Store)(nil)

// Options configures the S3 backend.
type Options struct {
	Bucket   string // required
	Region   string // e.g. "us-east-1"
	Prefix   string // key prefix, e.g. "results/"
	Endpoint string // custom endpoint for MinIO compatibility
}

// Object metadata keys. S3 returns user metadata keys lower-cased.
const (
	metaFilename  = "filename"
	metaFormat    = "format"
	metaSHA256    = "sha256"
	metaCreatedAt = "created-at"
)

// Store archives results in S3 (or MinIO), one object per result. File
// attributes travel as object metadata, so GetFile is a single HeadObject.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3-backed Store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 archive: bucket is required")
	}

	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	return &Store{
		client: s3.NewFromConfig(cfg, s3Opts...),
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

func (s *Store) key(fileID string) string {
	return s.prefix + fileID
}

func (s *Store) CreateFile(ctx context.Context, file *filestore.File) error {
	if err := filestore.ValidateID(file.ID); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(file.ID)),
		Body:          bytes.NewReader(file.Content),
		ContentLength: aws.Int64(int64(len(file.Content))),
		ContentType:   aws.String(file.ContentType),
		Metadata: map[string]string{
			metaFilename:  file.Filename,
			metaFormat:    file.Format,
			metaSHA256:    file.SHA256,
			metaCreatedAt: strconv.FormatInt(file.CreatedAt.UnixMicro(), 10),
		},
	})
	if err != nil {
		return fmt.Errorf("put result: %w", err)
	}
	return nil
}

func (s *Store) GetFile(ctx context.Context, fileID string) (*filestore.File, error) {
	if err := filestore.ValidateID(fileID); err != nil {
		return nil, err
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(fileID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("head result: %w", err)
	}

	f := &filestore.File{
		ID:          fileID,
		Filename:    out.Metadata[metaFilename],
		Format:      out.Metadata[metaFormat],
		ContentType: aws.ToString(out.ContentType),
		Bytes:       aws.ToInt64(out.ContentLength),
		SHA256:      out.Metadata[metaSHA256],
	}
	if us, err := strconv.ParseInt(out.Metadata[metaCreatedAt], 10, 64); err == nil {
		f.CreatedAt = time.UnixMicro(us).UTC()
	}
	return f, nil
}

func (s *Store) GetFileContent(ctx context.Context, fileID string) ([]byte, error) {
	if err := filestore.ValidateID(fileID); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(fileID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, filestore.ErrFileNotFound)
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read result body: %w", err)
	}
	return data, nil
}

// DeleteFile removes the result object. S3 deletes are idempotent, so
// existence is checked first to report ErrFileNotFound.
func (s *Store) DeleteFile(ctx context.Context, fileID string) error {
	if _, err := s.GetFile(ctx, fileID); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(fileID)),
	})
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

// isNotFound checks whether the error indicates a missing S3 object.
func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	// Some S3-compatible services return a generic "NotFound" status.
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}
