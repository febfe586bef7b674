// Package compressstore wraps an httpcache.BlobStore with transparent
// compression, trading CPU for storage/network bandwidth on larger
// cached bodies.
package compressstore

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"

	"github.com/golang/snappy"

	"github.com/arnavsurve/httpcache"
)

// Algorithm selects the compression codec.
type Algorithm byte

const (
	// Gzip trades speed for a better compression ratio.
	Gzip Algorithm = iota + 1
	// Snappy favors speed over ratio.
	Snappy
)

func (a Algorithm) String() string {
	switch a {
	case Gzip:
		return "gzip"
	case Snappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// Store wraps an httpcache.BlobStore, compressing values on Set and
// decompressing on Get. Each stored value is prefixed with a one-byte
// algorithm marker (0 meaning "stored uncompressed", used when
// compression fails) so Get never needs
// out-of-band knowledge of which algorithm wrote a given entry.
type Store struct {
	inner     httpcache.BlobStore
	algorithm Algorithm
	level     int // gzip only; ignored for Snappy
}

// Option configures a Store.
type Option func(*Store)

// WithGzipLevel sets the gzip compression level (gzip.HuffmanOnly to
// gzip.BestCompression). Ignored when the Store's algorithm is Snappy.
func WithGzipLevel(level int) Option {
	return func(s *Store) { s.level = level }
}

// New wraps inner with the given Algorithm.
func New(inner httpcache.BlobStore, algorithm Algorithm, opts ...Option) (*Store, error) {
	if inner == nil {
		return nil, fmt.Errorf("compressstore: inner store must not be nil")
	}
	s := &Store{inner: inner, algorithm: algorithm, level: gzip.DefaultCompression}
	for _, opt := range opts {
		opt(s)
	}
	if algorithm != Gzip && algorithm != Snappy {
		return nil, fmt.Errorf("compressstore: unsupported algorithm %v", algorithm)
	}
	return s, nil
}

func (s *Store) compress(data []byte) ([]byte, error) {
	switch s.algorithm {
	case Snappy:
		return snappy.Encode(nil, data), nil
	default:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, s.level)
		if err != nil {
			return nil, fmt.Errorf("gzip writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("gzip write: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip close: %w", err)
		}
		return buf.Bytes(), nil
	}
}

func decompress(algorithm Algorithm, data []byte) ([]byte, error) {
	switch algorithm {
	case Snappy:
		return snappy.Decode(nil, data)
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer r.Close() //nolint:errcheck // best effort cleanup, read error already surfaced
		return io.ReadAll(r)
	default:
		return nil, fmt.Errorf("compressstore: unsupported algorithm marker %v", algorithm)
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	if len(raw) == 0 {
		return raw, true, nil
	}
	marker := Algorithm(raw[0])
	if marker == 0 {
		return raw[1:], true, nil
	}
	plain, err := decompress(marker, raw[1:])
	if err != nil {
		return nil, false, fmt.Errorf("compressstore: decompress failed for key %q: %w", key, err)
	}
	return plain, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	compressed, err := s.compress(value)
	var data []byte
	if err != nil {
		httpcache.GetLogger().Warn("compression failed, storing uncompressed", "key", key, "algorithm", s.algorithm.String(), "error", err)
		data = make([]byte, len(value)+1)
		data[0] = 0
		copy(data[1:], value)
	} else {
		data = make([]byte, len(compressed)+1)
		data[0] = byte(s.algorithm)
		copy(data[1:], compressed)
	}
	return s.inner.Set(ctx, key, data)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

var _ httpcache.BlobStore = (*Store)(nil)
