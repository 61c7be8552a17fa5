package rc4

import (
	"crypto/cipher"
	"fmt"
)

// stateSize is the number of entries in the RC4 permutation.
const stateSize = 256

// State is an RC4 permutation together with the keystream position.
//
// A State is created by NewState and consumed by ApplyKeystream or
// XORKeyStream. Each call continues the keystream where the previous one
// stopped, so a State must not be reused for an unrelated message: create a
// new one per message, or use Cipher which does so for you.
//
// State is not safe for concurrent use.
type State struct {
	s    [stateSize]byte
	i, j uint8
}

// Compile-time interface check.
var _ cipher.Stream = (*State)(nil)

// NewState runs the key scheduling algorithm and returns the scrambled
// permutation. Keys longer than 256 bytes are accepted, but only the first
// 256 bytes affect the result.
// Returns ErrInvalidKey if key is empty.
func NewState(key []byte) (*State, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: key must not be empty", ErrInvalidKey)
	}

	st := &State{}
	for i := range st.s {
		st.s[i] = byte(i)
	}

	var j uint8
	for i := range stateSize {
		j += st.s[i] + key[i%len(key)]
		st.s[i], st.s[j] = st.s[j], st.s[i]
	}
	return st, nil
}

// XORKeyStream sets dst to the result of XORing src with the keystream.
// Dst and src must overlap entirely or not at all. It panics if dst is
// shorter than src.
func (st *State) XORKeyStream(dst, src []byte) {
	if len(src) == 0 {
		return
	}

	i, j := st.i, st.j
	_ = dst[len(src)-1]
	dst = dst[:len(src)] // eliminate bounds check from loop
	for n, v := range src {
		i++
		x := st.s[i]
		j += x
		y := st.s[j]
		st.s[i], st.s[j] = y, x
		dst[n] = v ^ st.s[x+y]
	}
	st.i, st.j = i, j
}

// ApplyKeystream returns a new slice holding src XORed with the next
// len(src) keystream bytes. The state advances by len(src) positions.
func (st *State) ApplyKeystream(src []byte) []byte {
	dst := make([]byte, len(src))
	st.XORKeyStream(dst, src)
	return dst
}

// Permutation returns a copy of the current permutation.
func (st *State) Permutation() [stateSize]byte {
	return st.s
}

// Reset zeroes the permutation and indices, making the State unusable
// until it is replaced by a new one from NewState.
func (st *State) Reset() {
	clear(st.s[:])
	st.i, st.j = 0, 0
}

// Cipher encrypts or decrypts input with key. A fresh State is used for every
// call, so calls are independent and safe for concurrent use.
// The returned slice has the same length as input and never aliases it.
// Returns ErrInvalidKey if key is empty.
func Cipher(key, input []byte) ([]byte, error) {
	st, err := NewState(key)
	if err != nil {
		return nil, err
	}
	defer st.Reset()

	return st.ApplyKeystream(input), nil
}

// Encrypt is Cipher. RC4 encryption and decryption are the same operation.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	return Cipher(key, plaintext)
}

// Decrypt is Cipher. RC4 encryption and decryption are the same operation.
func Decrypt(key, ciphertext []byte) ([]byte, error) {
	return Cipher(key, ciphertext)
}
