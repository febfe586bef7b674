package httpcache

import (
	"context"
	"testing"
)

func TestHashKey(t *testing.T) {
	key := "https://example.com/test"
	hash1 := hashKey(key)
	hash2 := hashKey(key)

	if hash1 != hash2 {
		t.Errorf("hashKey should produce consistent results: %s != %s", hash1, hash2)
	}

	if len(hash1) != 64 {
		t.Errorf("hashKey should produce 64 character hex string, got %d", len(hash1))
	}

	key2 := "https://example.com/other"
	hash3 := hashKey(key2)
	if hash1 == hash3 {
		t.Error("hashKey should produce different hashes for different keys")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	gcm, err := initEncryption("test-passphrase-12345")
	if err != nil {
		t.Fatalf("failed to init encryption: %v", err)
	}

	plaintext := []byte("Hello, World! This is a test message for encryption.")

	ciphertext, err := encrypt(gcm, plaintext)
	if err != nil {
		t.Fatalf("failed to encrypt: %v", err)
	}
	if string(ciphertext) == string(plaintext) {
		t.Error("ciphertext should not equal plaintext")
	}

	decrypted, err := decrypt(gcm, ciphertext)
	if err != nil {
		t.Fatalf("failed to decrypt: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("decrypted text should match plaintext: got %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptDecryptWithNilGCM(t *testing.T) {
	data := []byte("test data")

	encrypted, err := encrypt(nil, data)
	if err != nil {
		t.Fatalf("encrypt with nil should not error: %v", err)
	}
	if string(encrypted) != string(data) {
		t.Error("encrypt with nil should return unchanged data")
	}

	decrypted, err := decrypt(nil, data)
	if err != nil {
		t.Fatalf("decrypt with nil should not error: %v", err)
	}
	if string(decrypted) != string(data) {
		t.Error("decrypt with nil should return unchanged data")
	}
}

func TestDecryptWithShortCiphertext(t *testing.T) {
	gcm, err := initEncryption("test-passphrase-12345")
	if err != nil {
		t.Fatalf("failed to init encryption: %v", err)
	}

	_, err = decrypt(gcm, []byte("short"))
	if err == nil {
		t.Error("decrypt should fail with short ciphertext")
	}
}

func TestNewSecureBlobStoreEmptyPassphrase(t *testing.T) {
	inner := NewMemoryStore()
	if _, err := NewSecureBlobStore(inner, ""); err == nil {
		t.Error("NewSecureBlobStore with empty passphrase should error")
	}
}

func TestWithEncryptionEmptyPassphrase(t *testing.T) {
	e := &Engine{blobStore: NewMemoryStore()}
	opt := WithEncryption("")
	if err := opt(e); err == nil {
		t.Error("WithEncryption with empty passphrase should return error")
	}
}

func TestWithEncryptionRequiresBlobStore(t *testing.T) {
	e := &Engine{}
	opt := WithEncryption("a-passphrase")
	if err := opt(e); err == nil {
		t.Error("WithEncryption without a blob store already set should return error")
	}
}

func TestSecureBlobStoreRoundTrip(t *testing.T) {
	inner := NewMemoryStore()
	secure, err := NewSecureBlobStore(inner, "test-passphrase")
	if err != nil {
		t.Fatalf("NewSecureBlobStore failed: %v", err)
	}
	if !secure.IsEncryptionEnabled() {
		t.Error("encryption should be enabled")
	}

	ctx := context.Background()
	key := "id1|https://example.com/test"
	data := []byte("test data for encryption")

	if err := secure.Set(ctx, key, data); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The underlying store sees a hashed key and ciphertext, not plaintext.
	hashedKey := hashKey(key)
	stored, ok, err := inner.Get(ctx, hashedKey)
	if err != nil {
		t.Fatalf("inner Get failed: %v", err)
	}
	if !ok {
		t.Fatal("data should be stored under the hashed key")
	}
	if string(stored) == string(data) {
		t.Error("stored data should be encrypted, not plaintext")
	}

	retrieved, ok, err := secure.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Error("data should be found")
	}
	if string(retrieved) != string(data) {
		t.Errorf("retrieved data mismatch: got %q, want %q", retrieved, data)
	}

	if err := secure.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := secure.Get(ctx, key); ok {
		t.Error("data should be deleted")
	}
}

func TestEngineWithEncryptionOption(t *testing.T) {
	e, err := NewEngine(
		WithMetadataStore(NewMemoryStore()),
		WithBlobStore(NewMemoryStore()),
		WithEncryption("engine-level-passphrase"),
	)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	secure, ok := e.blobStore.(*SecureBlobStore)
	if !ok {
		t.Fatal("WithEncryption should wrap the blob store in a SecureBlobStore")
	}
	if !secure.IsEncryptionEnabled() {
		t.Error("encryption should be enabled")
	}
}
