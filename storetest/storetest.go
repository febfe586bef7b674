// Package storetest provides a shared conformance test for any
// httpcache MetadataStore or BlobStore implementation, so each backend
// package only needs to supply a constructed instance.
package storetest

import (
	"bytes"
	"context"
	"testing"
)

// store is the minimal shape both MetadataStore and BlobStore share.
type store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Exercise runs Get/Set/Delete round-trip checks against s, failing t on
// any deviation from the MetadataStore/BlobStore contract.
func Exercise(t *testing.T, s store) {
	t.Helper()
	ctx := context.Background()
	key := "httpcache-storetest-key"

	if _, ok, err := s.Get(ctx, key); err != nil {
		t.Fatalf("get before set: unexpected error: %v", err)
	} else if ok {
		t.Fatal("get before set: key reported present")
	}

	val := []byte("some bytes")
	if err := s.Set(ctx, key, val); err != nil {
		t.Fatalf("set: unexpected error: %v", err)
	}

	got, ok, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get after set: unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("get after set: key reported absent")
	}
	if !bytes.Equal(got, val) {
		t.Fatalf("get after set: value mismatch: got %q want %q", got, val)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}

	if _, ok, err := s.Get(ctx, key); err != nil {
		t.Fatalf("get after delete: unexpected error: %v", err)
	} else if ok {
		t.Fatal("get after delete: key still reported present")
	}

	if err := s.Delete(ctx, "httpcache-storetest-absent-key"); err != nil {
		t.Fatalf("delete of absent key must not error: %v", err)
	}
}
