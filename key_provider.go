package rc4

// Key represents a named RC4 key.
type Key struct {
	// ID is a unique identifier for the key (e.g., "key-2024-01").
	ID string

	// Bytes is the raw key material, 1 to 256 bytes.
	Bytes []byte
}

// KeyProvider abstracts key retrieval for encoding and decoding.
// Implementations must be safe for concurrent use and must return keys whose
// Bytes the caller may modify.
type KeyProvider interface {
	// CurrentKey returns the key to use for new encodings.
	CurrentKey() (Key, error)

	// KeyByID returns the key with the given ID, used for decoding.
	// Returns ErrKeyNotFound if the key ID is not known.
	KeyByID(id string) (Key, error)
}

// validKeySize reports whether n bytes of key material are accepted by providers.
func validKeySize(n int) bool {
	return n >= minKeySize && n <= maxKeySize
}
