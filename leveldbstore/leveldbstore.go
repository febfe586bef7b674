// Package leveldbstore provides a github.com/syndtr/goleveldb-backed
// implementation of httpcache.MetadataStore and httpcache.BlobStore.
package leveldbstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/arnavsurve/httpcache"
)

// Store is a MetadataStore/BlobStore backed by a single LevelDB handle.
type Store struct {
	db *leveldb.DB
}

// New opens (creating if absent) a LevelDB database at path.
func New(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-opened LevelDB handle.
func NewWithDB(db *leveldb.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if err := s.db.Put([]byte(key), value, nil); err != nil {
		return fmt.Errorf("leveldbstore: set failed for key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("leveldbstore: delete failed for key %q: %w", key, err)
	}
	return nil
}

var (
	_ httpcache.MetadataStore = (*Store)(nil)
	_ httpcache.BlobStore     = (*Store)(nil)
)
