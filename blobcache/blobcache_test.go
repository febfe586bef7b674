package blobcache

import (
	"context"
	"os"
	"testing"
	"time"

	_ "gocloud.dev/blob/fileblob" // Register file:// scheme
	_ "gocloud.dev/blob/memblob"  // Register mem:// scheme

	"github.com/arnavsurve/httpcache/storetest"
)

func TestStoreConformanceMem(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, Config{
		BucketURL: "mem://",
		KeyPrefix: "test/",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	storetest.Exercise(t, store)
}

func TestStoreConformanceFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "blobcache-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	ctx := context.Background()
	store, err := New(ctx, Config{
		BucketURL: "file://" + tmpDir,
		KeyPrefix: "cache/",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	storetest.Exercise(t, store)
}

func TestNewConfigValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name:        "valid config with mem",
			config:      Config{BucketURL: "mem://", KeyPrefix: "test/"},
			expectError: false,
		},
		{
			name:        "missing bucket URL and bucket",
			config:      Config{KeyPrefix: "test/"},
			expectError: true,
		},
		{
			name:        "custom timeout",
			config:      Config{BucketURL: "mem://", Timeout: time.Second},
			expectError: false,
		},
		{
			name:        "default prefix",
			config:      Config{BucketURL: "mem://"},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(ctx, tt.config)
			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() { _ = s.Close() }()

			if tt.config.KeyPrefix == "" && s.keyPrefix != DefaultConfig().KeyPrefix {
				t.Errorf("expected default key prefix %q, got %q", DefaultConfig().KeyPrefix, s.keyPrefix)
			}
			if tt.config.Timeout == 0 && s.timeout != DefaultConfig().Timeout {
				t.Errorf("expected default timeout %v, got %v", DefaultConfig().Timeout, s.timeout)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	if config.KeyPrefix != "cache/" {
		t.Errorf("expected default key prefix 'cache/', got %q", config.KeyPrefix)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", config.Timeout)
	}
}

func TestBlobKeyUsesPrefix(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, Config{BucketURL: "mem://", KeyPrefix: "custom-prefix/"})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = s.Close() }()

	key := s.blobKey("test-key")
	if len(key) < len("custom-prefix/") || key[:len("custom-prefix/")] != "custom-prefix/" {
		t.Errorf("expected key to start with 'custom-prefix/', got %q", key)
	}
}

func TestNewWithBucketDoesNotOwnBucket(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, Config{BucketURL: "mem://"})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	wrapped := NewWithBucket(s.bucket, "wrapped/", time.Second)
	if wrapped.ownsBucket {
		t.Error("NewWithBucket should not take ownership of the bucket")
	}
	// Close on the non-owning wrapper must be a no-op; the original owner
	// still closes it.
	if err := wrapped.Close(); err != nil {
		t.Errorf("Close on a non-owning store should not error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on the owning store failed: %v", err)
	}
}
