package rc4

import "fmt"

// decrypt reverses encrypt. The key ID from the header is used to look up the
// key from the provider. RC4 carries no integrity check, so a wrong key yields
// garbage rather than an error.
func decrypt(data []byte, provider KeyProvider) ([]byte, error) {
	h, ciphertext, err := readHeader(data)
	if err != nil {
		return nil, err
	}

	key, err := provider.KeyByID(h.keyID)
	if err != nil {
		return nil, err
	}
	defer clear(key.Bytes)

	if !validKeySize(len(key.Bytes)) {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key.Bytes))
	}

	return Cipher(key.Bytes, ciphertext)
}
