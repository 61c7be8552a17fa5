package rc4

import (
	"fmt"
	"io"
)

// Binary format constants.
const (
	// magic is the 2-byte envelope signature "R4".
	magic = "R4"

	// formatVersion is the current binary format version.
	formatVersion = 0x01

	// algRC4 identifies plain RC4 as the stream cipher.
	algRC4 = 0x01

	// minKeySize and maxKeySize bound provider key material. The key
	// schedule reads at most 256 key bytes.
	minKeySize = 1
	maxKeySize = stateSize

	// maxKeyIDLen is the longest key ID that fits the one-byte length field.
	maxKeyIDLen = 255

	// minHeaderSize is the minimum header size: magic(2) + version(1) + alg(1) + keyIDLen(1).
	minHeaderSize = 5
)

// header represents the parsed header of an encoded payload.
type header struct {
	version   byte
	algorithm byte
	keyID     string
}

// headerSize returns the total header size in bytes for the given key ID.
func headerSize(keyID string) int {
	return minHeaderSize + len(keyID)
}

// writeHeader writes the binary header to w.
func writeHeader(w io.Writer, h *header) error {
	if len(h.keyID) > maxKeyIDLen {
		return fmt.Errorf("%w: key ID too long", ErrInvalidFormat)
	}

	buf := make([]byte, 0, headerSize(h.keyID))
	buf = append(buf, magic...)
	buf = append(buf, h.version, h.algorithm, byte(len(h.keyID)))
	buf = append(buf, h.keyID...)

	_, err := w.Write(buf)
	return err
}

// readHeader parses the binary header from data, returning the header and the
// remaining payload. The payload aliases data.
func readHeader(data []byte) (*header, []byte, error) {
	if len(data) < minHeaderSize {
		return nil, nil, fmt.Errorf("%w: data too short", ErrInvalidFormat)
	}

	if string(data[0:2]) != magic {
		return nil, nil, fmt.Errorf("%w: invalid magic bytes", ErrInvalidFormat)
	}

	h := &header{
		version:   data[2],
		algorithm: data[3],
	}
	if h.version != formatVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, h.version)
	}
	if h.algorithm != algRC4 {
		return nil, nil, fmt.Errorf("%w: unsupported algorithm %d", ErrInvalidFormat, h.algorithm)
	}

	keyIDLen := int(data[4])
	offset := minHeaderSize
	if len(data) < offset+keyIDLen {
		return nil, nil, fmt.Errorf("%w: data too short for key ID", ErrInvalidFormat)
	}
	h.keyID = string(data[offset : offset+keyIDLen])
	offset += keyIDLen

	return h, data[offset:], nil
}
