package rc4

import (
	"bytes"
	"fmt"
)

// encrypt transforms plaintext under key and prepends an envelope header
// naming the key, so that decrypt can find it again after rotation.
func encrypt(plaintext []byte, key Key) ([]byte, error) {
	if !validKeySize(len(key.Bytes)) {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key.Bytes))
	}

	ciphertext, err := Cipher(key.Bytes, plaintext)
	if err != nil {
		return nil, err
	}

	h := &header{
		version:   formatVersion,
		algorithm: algRC4,
		keyID:     key.ID,
	}

	var buf bytes.Buffer
	buf.Grow(headerSize(key.ID) + len(ciphertext))
	if err := writeHeader(&buf, h); err != nil {
		return nil, fmt.Errorf("rc4: failed to write header: %w", err)
	}
	buf.Write(ciphertext)

	return buf.Bytes(), nil
}
