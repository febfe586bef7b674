// Package blobcache provides an httpcache.BlobStore implementation using
// the Go Cloud Development Kit's cloud-agnostic blob storage, supporting
// Amazon S3, Google Cloud Storage, Azure Blob Storage, local filesystem,
// and in-memory buckets behind one API.
//
// Example usage with S3:
//
//	import (
//	    "context"
//	    _ "gocloud.dev/blob/s3blob"
//	    "github.com/arnavsurve/httpcache/blobcache"
//	)
//
//	ctx := context.Background()
//	store, err := blobcache.New(ctx, blobcache.Config{
//	    BucketURL: "s3://my-bucket?region=us-west-2",
//	    KeyPrefix: "httpcache/",
//	})
package blobcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/arnavsurve/httpcache"
)

// Config holds the configuration for the blob store.
type Config struct {
	// BucketURL is the Go Cloud blob URL (e.g., "s3://bucket?region=us-west-2").
	BucketURL string

	// KeyPrefix is prepended to all keys (default: "cache/").
	KeyPrefix string

	// Timeout bounds each blob operation when ctx carries no deadline
	// (default: 30s).
	Timeout time.Duration

	// Bucket is an optional pre-opened bucket; if set, BucketURL is
	// ignored and the caller retains ownership (Close is a no-op).
	Bucket *blob.Bucket
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{KeyPrefix: "cache/", Timeout: 30 * time.Second}
}

// Store implements httpcache.BlobStore using a Go Cloud blob bucket. It
// is not used as a MetadataStore: cloud object storage has no
// appropriate place to store the small structured metadata record
// (§3), so callers pairing Store with a blob backend should keep
// metadata in MemoryStore, diskstore, redisstore, or leveldbstore.
type Store struct {
	bucket     *blob.Bucket
	keyPrefix  string
	timeout    time.Duration
	ownsBucket bool
}

// New opens a bucket per Config.BucketURL (or reuses Config.Bucket) and
// returns a Store. Call Close when done.
func New(ctx context.Context, config Config) (*Store, error) {
	if config.BucketURL == "" && config.Bucket == nil {
		return nil, fmt.Errorf("blobcache: either BucketURL or Bucket must be provided")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultConfig().KeyPrefix
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	if config.Bucket != nil {
		return &Store{bucket: config.Bucket, keyPrefix: config.KeyPrefix, timeout: config.Timeout}, nil
	}

	bucket, err := blob.OpenBucket(ctx, config.BucketURL)
	if err != nil {
		return nil, fmt.Errorf("blobcache: failed to open bucket: %w", err)
	}
	return &Store{bucket: bucket, keyPrefix: config.KeyPrefix, timeout: config.Timeout, ownsBucket: true}, nil
}

// NewWithBucket wraps an already-opened bucket. The caller keeps
// ownership; Close is a no-op.
func NewWithBucket(bucket *blob.Bucket, keyPrefix string, timeout time.Duration) *Store {
	if keyPrefix == "" {
		keyPrefix = DefaultConfig().KeyPrefix
	}
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Store{bucket: bucket, keyPrefix: keyPrefix, timeout: timeout}
}

// Close closes the bucket if Store opened it.
func (s *Store) Close() error {
	if !s.ownsBucket {
		return nil
	}
	return s.bucket.Close()
}

// blobKey hashes the key so object names never carry the raw "{id}|{url}"
// pair, which can contain characters some backends (S3, GCS) restrict.
func (s *Store) blobKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return s.keyPrefix + hex.EncodeToString(hash[:])
}

func (s *Store) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	reader, err := s.bucket.NewReader(ctx, s.blobKey(key), nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("blobcache: get failed for key %q: %w", key, err)
	}
	defer reader.Close() //nolint:errcheck // best effort cleanup, error already handled

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("blobcache: read failed for key %q: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	writer, err := s.bucket.NewWriter(ctx, s.blobKey(key), nil)
	if err != nil {
		return fmt.Errorf("blobcache: set failed to open writer for key %q: %w", key, err)
	}
	_, writeErr := writer.Write(value)
	closeErr := writer.Close()
	if writeErr != nil {
		return fmt.Errorf("blobcache: set failed to write for key %q: %w", key, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("blobcache: set failed to close writer for key %q: %w", key, closeErr)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()

	err := s.bucket.Delete(ctx, s.blobKey(key))
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("blobcache: delete failed for key %q: %w", key, err)
	}
	return nil
}

var _ httpcache.BlobStore = (*Store)(nil)
