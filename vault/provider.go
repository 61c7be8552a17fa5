// Package vault provides an RC4 KeyProvider backed by the HashiCorp Vault
// Transit secrets engine.
//
// RC4 keys are encrypted with a Transit key ahead of time and decrypted
// through the Transit decrypt endpoint when the provider is built.
//
// Usage:
//
//	provider, err := vault.New(ctx, client,
//	    vault.WithEncryptedKey("vault:v2:...", "", "rc4-keys"),
//	    vault.WithEncryptedKey("vault:v1:...", "", "rc4-keys"),
//	)
package vault

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	rc4 "github.com/rbaliyan/config-rc4"
)

// ErrInvalidCiphertext is returned when a ciphertext is not in the
// "vault:v<N>:<data>" Transit format.
var ErrInvalidCiphertext = errors.New("vault: invalid transit ciphertext")

// Client abstracts the Vault Transit decrypt operation so any Vault client
// library can be plugged in.
type Client interface {
	// TransitDecrypt decrypts a "vault:v<N>:..." ciphertext with the named
	// Transit key and returns the plaintext bytes.
	TransitDecrypt(ctx context.Context, keyName string, ciphertext string) ([]byte, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	keys []transitKey
}

type transitKey struct {
	id         string
	keyName    string
	ciphertext string
}

// WithEncryptedKey adds a Transit-encrypted RC4 key. When id is empty the
// key ID is derived from the Transit key name and ciphertext version, for
// example "rc4-keys:v2". The first key added becomes the current key.
func WithEncryptedKey(ciphertext string, id, transitKeyName string) Option {
	return func(o *options) {
		o.keys = append(o.keys, transitKey{id: id, keyName: transitKeyName, ciphertext: ciphertext})
	}
}

// New decrypts every configured key through Transit and returns a provider
// holding them. The client is not retained.
func New(ctx context.Context, client Client, opts ...Option) (*rc4.StaticKeyProvider, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.keys) == 0 {
		return nil, fmt.Errorf("vault: at least one encrypted key is required")
	}

	keys := make([]rc4.Key, 0, len(o.keys))
	defer func() {
		for _, k := range keys {
			clear(k.Bytes)
		}
	}()

	for _, tk := range o.keys {
		version, err := ciphertextVersion(tk.ciphertext)
		if err != nil {
			return nil, err
		}
		id := tk.id
		if id == "" {
			id = tk.keyName + ":v" + strconv.Itoa(version)
		}

		plaintext, err := client.TransitDecrypt(ctx, tk.keyName, tk.ciphertext)
		if err != nil {
			return nil, fmt.Errorf("vault: failed to decrypt key %q: %w", id, err)
		}
		keys = append(keys, rc4.Key{ID: id, Bytes: plaintext})
	}

	provider, err := rc4.NewStaticKeyProviderFromKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return provider, nil
}

// ciphertextVersion returns N from "vault:v<N>:<data>".
func ciphertextVersion(ciphertext string) (int, error) {
	rest, ok := strings.CutPrefix(ciphertext, "vault:v")
	if !ok {
		return 0, ErrInvalidCiphertext
	}
	ver, data, ok := strings.Cut(rest, ":")
	if !ok || data == "" {
		return 0, ErrInvalidCiphertext
	}
	n, err := strconv.Atoi(ver)
	if err != nil || n < 1 {
		return 0, ErrInvalidCiphertext
	}
	return n, nil
}
