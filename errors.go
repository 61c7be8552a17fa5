package rc4

import "errors"

var (
	// ErrInvalidKey is returned when an RC4 key is empty.
	ErrInvalidKey = errors.New("rc4: invalid key")

	// ErrKeyNotFound is returned when a key ID is not found in the provider.
	ErrKeyNotFound = errors.New("rc4: key not found")

	// ErrInvalidKeySize is returned when provider key material is not 1 to 256 bytes.
	ErrInvalidKeySize = errors.New("rc4: invalid key size, must be 1 to 256 bytes")

	// ErrInvalidFormat is returned when encoded data has an invalid envelope.
	ErrInvalidFormat = errors.New("rc4: invalid encrypted data format")

	// ErrInvalidKeyID is returned when a key ID is empty or invalid.
	ErrInvalidKeyID = errors.New("rc4: invalid key ID")

	// ErrProviderDestroyed is returned by a StaticKeyProvider after Destroy.
	ErrProviderDestroyed = errors.New("rc4: key provider destroyed")
)

// IsInvalidKey returns true if the error is or wraps ErrInvalidKey.
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}

// IsKeyNotFound returns true if the error is or wraps ErrKeyNotFound.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsInvalidKeySize returns true if the error is or wraps ErrInvalidKeySize.
func IsInvalidKeySize(err error) bool {
	return errors.Is(err, ErrInvalidKeySize)
}

// IsInvalidFormat returns true if the error is or wraps ErrInvalidFormat.
func IsInvalidFormat(err error) bool {
	return errors.Is(err, ErrInvalidFormat)
}

// IsInvalidKeyID returns true if the error is or wraps ErrInvalidKeyID.
func IsInvalidKeyID(err error) bool {
	return errors.Is(err, ErrInvalidKeyID)
}

// IsProviderDestroyed returns true if the error is or wraps ErrProviderDestroyed.
func IsProviderDestroyed(err error) bool {
	return errors.Is(err, ErrProviderDestroyed)
}
