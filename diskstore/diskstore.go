// Package diskstore provides a diskv-backed implementation of
// httpcache.MetadataStore and httpcache.BlobStore, supplementing an
// in-memory cache layer with persistent storage on disk.
package diskstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/peterbourgon/diskv"
)

// Store is a MetadataStore/BlobStore backed by diskv. The same Store value
// can serve as both, since the two callers key into disjoint namespaces
// (URL vs "{id}|{url}").
type Store struct {
	d *diskv.Diskv
}

// New returns a Store that persists entries under basePath.
func New(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 100 * 1024 * 1024, // 100MB in-memory LRU layer in front of disk
		}),
	}
}

// NewWithDiskv returns a Store using the provided Diskv as underlying
// storage, for callers who want a custom transform/compression/index.
func NewWithDiskv(d *diskv.Diskv) *Store {
	return &Store{d}
}

// Get returns the value for key. The context parameter is accepted for
// interface compliance but not used for disk operations.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, err := s.d.Read(keyToFilename(key))
	if err != nil {
		return nil, false, nil // missing file is a miss, not an error
	}
	return val, true, nil
}

// Set stores value against key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.d.WriteStream(keyToFilename(key), bytes.NewReader(value), true); err != nil {
		return fmt.Errorf("diskstore: set failed for key: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	_ = s.d.Erase(keyToFilename(key)) //nolint:errcheck // file not found is acceptable
	return nil
}

func keyToFilename(key string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, key) // hash.Hash.Write never errors
	return hex.EncodeToString(h.Sum(nil))
}
