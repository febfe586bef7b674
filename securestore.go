package httpcache

import (
	"context"
	"errors"
)

// SecureBlobStore wraps a BlobStore with AES-256-GCM encryption at rest
// and SHA-256 key hashing, reusing the scrypt-derived cipher built by
// initEncryption. Keys are hashed so the underlying backend never sees
// the plaintext URL/id pair either.
type SecureBlobStore struct {
	inner      BlobStore
	passphrase string
	security   *securityConfig
}

// NewSecureBlobStore derives an AES-256-GCM key from passphrase via
// scrypt and wraps inner so every Set encrypts and every Get decrypts.
func NewSecureBlobStore(inner BlobStore, passphrase string) (*SecureBlobStore, error) {
	if passphrase == "" {
		return nil, errors.New("httpcache: encryption passphrase must not be empty")
	}
	gcm, err := initEncryption(passphrase)
	if err != nil {
		return nil, err
	}
	return &SecureBlobStore{
		inner:      inner,
		passphrase: passphrase,
		security:   &securityConfig{gcm: gcm, passphrase: passphrase},
	}, nil
}

func (s *SecureBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := s.inner.Get(ctx, hashKey(key))
	if err != nil || !ok {
		return nil, ok, err
	}
	plain, err := decrypt(s.security.gcm, raw)
	if err != nil {
		return nil, false, err
	}
	return plain, true, nil
}

func (s *SecureBlobStore) Set(ctx context.Context, key string, value []byte) error {
	cipherBytes, err := encrypt(s.security.gcm, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, hashKey(key), cipherBytes)
}

func (s *SecureBlobStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, hashKey(key))
}
