package httpcache

import (
	"fmt"
	"time"
)

// Option configures an Engine at construction time. Use the With*
// functions below to build a set of Options, mirroring the teacher's
// TransportOption pattern (options.go) one layer down, over Engine
// instead of Transport.
type Option func(*Engine) error

// WithShared sets whether the engine applies shared-cache constraints
// (private, s-maxage, Authorization gating). Default: true.
func WithShared(shared bool) Option {
	return func(e *Engine) error {
		e.shared = shared
		return nil
	}
}

// WithForceMustUnderstand makes the engine treat every response as if it
// carried Cache-Control: must-understand, per §6's force_must_understand
// option. Default: false.
func WithForceMustUnderstand(force bool) Option {
	return func(e *Engine) error {
		e.forceMustUnderstand = force
		return nil
	}
}

// WithHeuristicLifetime sets the lifetime assumed for a cacheable
// response that supplies no explicit freshness information. Default:
// 60s.
func WithHeuristicLifetime(d time.Duration) Option {
	return func(e *Engine) error {
		if d < 0 {
			return fmt.Errorf("httpcache: heuristic lifetime must be non-negative")
		}
		e.heuristicLifetime = d
		return nil
	}
}

// WithMetadataStore sets the MetadataStore backend. Required; Engine
// construction fails without one.
func WithMetadataStore(s MetadataStore) Option {
	return func(e *Engine) error {
		if s == nil {
			return fmt.Errorf("httpcache: metadata store must not be nil")
		}
		e.metaStore = s
		return nil
	}
}

// WithBlobStore sets the BlobStore backend. Required; Engine
// construction fails without one.
func WithBlobStore(s BlobStore) Option {
	return func(e *Engine) error {
		if s == nil {
			return fmt.Errorf("httpcache: blob store must not be nil")
		}
		e.blobStore = s
		return nil
	}
}

// WithMetrics installs a Metrics sink. Default: NoOpMetrics.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) error {
		if m == nil {
			return fmt.Errorf("httpcache: metrics sink must not be nil")
		}
		e.metrics = m
		return nil
	}
}

// WithResilience installs retry/circuit-breaker policies around
// individual storage calls. Default: disabled.
func WithResilience(r *StorageResilience) Option {
	return func(e *Engine) error {
		e.resilience = r
		return nil
	}
}

// WithEncryption wraps the configured BlobStore with AES-256-GCM
// encryption derived from passphrase via scrypt. Must be applied after
// WithBlobStore in the Option list, since it wraps whatever BlobStore is
// already set.
func WithEncryption(passphrase string) Option {
	return func(e *Engine) error {
		if passphrase == "" {
			return fmt.Errorf("httpcache: encryption passphrase must not be empty")
		}
		if e.blobStore == nil {
			return fmt.Errorf("httpcache: WithEncryption requires a blob store to already be set")
		}
		secure, err := NewSecureBlobStore(e.blobStore, passphrase)
		if err != nil {
			return err
		}
		e.blobStore = secure
		return nil
	}
}

// WithTeeBufferCap bounds how much of a response body the slow (capture)
// side of the insertion-path stream tee may buffer before being
// auto-cancelled. Default: defaultTeeBufferCap (8 MiB).
func WithTeeBufferCap(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("httpcache: tee buffer cap must be positive")
		}
		e.teeBufferCap = n
		return nil
	}
}

// WithErrorHook overrides the engine's error hook. Default logs through
// GetLogger at Warn level.
func WithErrorHook(hook ErrorHook) Option {
	return func(e *Engine) error {
		if hook == nil {
			return fmt.Errorf("httpcache: error hook must not be nil")
		}
		e.onError = hook
		return nil
	}
}
