package rc4

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// StaticKeyProvider is a KeyProvider backed by in-memory keys.
// Key material is sealed in memguard enclaves and only decrypted for the
// duration of a CurrentKey or KeyByID call.
// It is safe for concurrent use.
type StaticKeyProvider struct {
	mu        sync.RWMutex
	currentID string
	keys      map[string]*memguard.Enclave
	err       error // deferred validation error from options
}

// StaticOption configures a StaticKeyProvider.
type StaticOption func(*StaticKeyProvider)

// WithOldKey adds a previous key for decoding during key rotation.
// The keyBytes must be 1 to 256 bytes and id must be non-empty and unique.
func WithOldKey(keyBytes []byte, id string) StaticOption {
	return func(p *StaticKeyProvider) {
		if p.err != nil {
			return
		}
		if !validKeySize(len(keyBytes)) {
			p.err = fmt.Errorf("%w: old key %q has %d bytes", ErrInvalidKeySize, id, len(keyBytes))
			return
		}
		if id == "" {
			p.err = fmt.Errorf("%w: old key ID must not be empty", ErrInvalidKeyID)
			return
		}
		if _, dup := p.keys[id]; dup {
			p.err = fmt.Errorf("%w: duplicate key ID %q", ErrInvalidKeyID, id)
			return
		}
		p.keys[id] = seal(keyBytes)
	}
}

// NewStaticKeyProvider creates a KeyProvider with the given current key.
// The keyBytes must be 1 to 256 bytes. The id identifies this key.
// Old keys can be added with WithOldKey for rotation support.
// Key bytes are copied internally; the caller may safely zero the original after construction.
func NewStaticKeyProvider(keyBytes []byte, id string, opts ...StaticOption) (*StaticKeyProvider, error) {
	if !validKeySize(len(keyBytes)) {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(keyBytes))
	}
	if id == "" {
		return nil, fmt.Errorf("%w: key ID must not be empty", ErrInvalidKeyID)
	}

	p := &StaticKeyProvider{
		currentID: id,
		keys:      map[string]*memguard.Enclave{id: seal(keyBytes)},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.err != nil {
		return nil, p.err
	}

	return p, nil
}

// NewStaticKeyProviderFromKeys creates a StaticKeyProvider from an ordered key
// list: the first key is current, the rest are old keys for decoding.
// Key bytes are copied; the caller may zero them afterwards.
func NewStaticKeyProviderFromKeys(keys ...Key) (*StaticKeyProvider, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: at least one key is required", ErrKeyNotFound)
	}

	opts := make([]StaticOption, 0, len(keys)-1)
	for _, k := range keys[1:] {
		opts = append(opts, WithOldKey(k.Bytes, k.ID))
	}
	return NewStaticKeyProvider(keys[0].Bytes, keys[0].ID, opts...)
}

// CurrentKey returns the current key for new encodings.
func (p *StaticKeyProvider) CurrentKey() (Key, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.open(p.currentID)
}

// KeyByID returns the key with the given ID.
func (p *StaticKeyProvider) KeyByID(id string) (Key, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.open(id)
}

// Destroy drops all sealed key material. Subsequent calls to CurrentKey and
// KeyByID return ErrProviderDestroyed. Destroy is idempotent.
func (p *StaticKeyProvider) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = nil
	p.currentID = ""
}

// IDs returns the known key IDs, current key first.
func (p *StaticKeyProvider) IDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.keys == nil {
		return nil
	}
	ids := make([]string, 0, len(p.keys))
	ids = append(ids, p.currentID)
	for id := range p.keys {
		if id != p.currentID {
			ids = append(ids, id)
		}
	}
	return ids
}

// open decrypts the enclave for id into a caller-owned Key.
// The caller must hold p.mu.
func (p *StaticKeyProvider) open(id string) (Key, error) {
	if p.keys == nil {
		return Key{}, ErrProviderDestroyed
	}
	enclave, ok := p.keys[id]
	if !ok {
		return Key{}, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}

	buf, err := enclave.Open()
	if err != nil {
		return Key{}, fmt.Errorf("rc4: failed to open key %q: %w", id, err)
	}
	defer buf.Destroy()

	b := make([]byte, buf.Size())
	copy(b, buf.Bytes())
	return Key{ID: id, Bytes: b}, nil
}

// seal copies keyBytes into a new enclave. The caller's slice is left untouched.
func seal(keyBytes []byte) *memguard.Enclave {
	b := make([]byte, len(keyBytes))
	copy(b, keyBytes)
	return memguard.NewEnclave(b) // wipes b
}

// Compile-time interface check.
var _ KeyProvider = (*StaticKeyProvider)(nil)
