package vault

import (
	"bytes"
	"context"
	"errors"
	"testing"

	rc4 "github.com/rbaliyan/config-rc4"
)

type mockClient struct {
	keys   map[string][]byte // "keyName:ciphertext" -> plaintext
	failOn string
}

func (m *mockClient) TransitDecrypt(ctx context.Context, keyName string, ciphertext string) ([]byte, error) {
	lookup := keyName + ":" + ciphertext
	if lookup == m.failOn {
		return nil, errors.New("vault: permission denied")
	}
	plaintext, ok := m.keys[lookup]
	if !ok {
		return nil, errors.New("vault: decryption failed")
	}
	return plaintext, nil
}

func TestNew(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{"rc4-keys:vault:v1:abc123": []byte("Key")},
	}

	provider, err := New(context.Background(), client,
		WithEncryptedKey("vault:v1:abc123", "key-1", "rc4-keys"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key, err := provider.CurrentKey()
	if err != nil {
		t.Fatalf("CurrentKey: %v", err)
	}
	if key.ID != "key-1" {
		t.Errorf("CurrentKey().ID: got %q, want %q", key.ID, "key-1")
	}
	if !bytes.Equal(key.Bytes, []byte("Key")) {
		t.Errorf("CurrentKey().Bytes: got %q", key.Bytes)
	}
}

func TestNewDerivedIDs(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{
			"rc4-keys:vault:v2:new": []byte("new key"),
			"rc4-keys:vault:v1:old": []byte("old key"),
		},
	}

	provider, err := New(context.Background(), client,
		WithEncryptedKey("vault:v2:new", "", "rc4-keys"),
		WithEncryptedKey("vault:v1:old", "", "rc4-keys"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got, want := provider.IDs(), []string{"rc4-keys:v2", "rc4-keys:v1"}; len(got) != 2 || got[0] != want[0] {
		t.Errorf("IDs(): got %v, want %v", got, want)
	}
	old, err := provider.KeyByID("rc4-keys:v1")
	if err != nil {
		t.Fatalf("KeyByID: %v", err)
	}
	if string(old.Bytes) != "old key" {
		t.Errorf("KeyByID().Bytes: got %q", old.Bytes)
	}
}

func TestNewNoKeys(t *testing.T) {
	_, err := New(context.Background(), &mockClient{})
	if err == nil {
		t.Error("expected error for no keys")
	}
}

func TestNewDecryptFailure(t *testing.T) {
	client := &mockClient{failOn: "rc4-keys:vault:v1:abc123"}

	_, err := New(context.Background(), client,
		WithEncryptedKey("vault:v1:abc123", "key-1", "rc4-keys"),
	)
	if err == nil {
		t.Error("expected error for decrypt failure")
	}
}

func TestNewInvalidCiphertext(t *testing.T) {
	for _, ct := range []string{"", "abc123", "vault:abc", "vault:v:abc", "vault:v0:abc", "vault:vx:abc", "vault:v1:"} {
		_, err := New(context.Background(), &mockClient{},
			WithEncryptedKey(ct, "key-1", "rc4-keys"),
		)
		if !errors.Is(err, ErrInvalidCiphertext) {
			t.Errorf("%q: expected ErrInvalidCiphertext, got %v", ct, err)
		}
	}
}

func TestNewKeyZeroed(t *testing.T) {
	plaintext := []byte("Wiki")
	client := &mockClient{
		keys: map[string][]byte{"rc4-keys:vault:v1:abc": plaintext},
	}

	if _, err := New(context.Background(), client,
		WithEncryptedKey("vault:v1:abc", "key-1", "rc4-keys"),
	); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, make([]byte, len(plaintext))) {
		t.Error("decrypted key material was not zeroed after construction")
	}
}

func TestNewReturnsKeyProvider(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{"rc4-keys:vault:v1:abc": []byte("Key")},
	}

	provider, err := New(context.Background(), client,
		WithEncryptedKey("vault:v1:abc", "key-1", "rc4-keys"),
	)
	if err != nil {
		t.Fatal(err)
	}

	var _ rc4.KeyProvider = provider
}
