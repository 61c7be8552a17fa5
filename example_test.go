package rc4_test

import (
	"fmt"

	rc4 "github.com/rbaliyan/config-rc4"
	"github.com/rbaliyan/config/codec"
)

func ExampleCipher() {
	ciphertext, err := rc4.Cipher([]byte("Key"), []byte("Plaintext"))
	if err != nil {
		panic(err)
	}
	fmt.Printf("Ciphertext: %X\n", ciphertext)

	// Applying the same keystream again recovers the input
	plaintext, err := rc4.Cipher([]byte("Key"), ciphertext)
	if err != nil {
		panic(err)
	}
	fmt.Println("Decrypted:", string(plaintext))

	// Output:
	// Ciphertext: BBF316E8D940AF0AD3
	// Decrypted: Plaintext
}

func ExampleCipher_emptyKey() {
	_, err := rc4.Cipher(nil, []byte("Plaintext"))
	fmt.Println(rc4.IsInvalidKey(err))

	// Output:
	// true
}

func ExampleNewState() {
	st, err := rc4.NewState([]byte("Wiki"))
	if err != nil {
		panic(err)
	}

	// A State continues its keystream across calls
	first := st.ApplyKeystream([]byte("pe"))
	rest := st.ApplyKeystream([]byte("dia"))
	fmt.Printf("%x %x\n", first, rest)

	// Output:
	// 1021 bf0420
}

func ExampleNewCodec() {
	provider, err := rc4.NewStaticKeyProvider([]byte("Secret"), "key-1")
	if err != nil {
		panic(err)
	}

	// Wrap the JSON codec with RC4
	rc4JSON, err := rc4.NewCodec(codec.JSON(), provider)
	if err != nil {
		panic(err)
	}
	fmt.Println("Codec name:", rc4JSON.Name())

	data, err := rc4JSON.Encode("my-secret")
	if err != nil {
		panic(err)
	}
	fmt.Printf("Encoded size: %d bytes\n", len(data))

	var result string
	if err := rc4JSON.Decode(data, &result); err != nil {
		panic(err)
	}
	fmt.Println("Decoded:", result)

	// Output:
	// Codec name: rc4:json
	// Encoded size: 21 bytes
	// Decoded: my-secret
}

func ExampleNewStaticKeyProvider_rotation() {
	oldProvider, err := rc4.NewStaticKeyProvider([]byte("old secret"), "key-v1")
	if err != nil {
		panic(err)
	}
	oldCodec, err := rc4.NewCodec(codec.JSON(), oldProvider)
	if err != nil {
		panic(err)
	}

	encoded, err := oldCodec.Encode("secret-data")
	if err != nil {
		panic(err)
	}

	// Rotate: new key is current, old key available for decoding
	newProvider, err := rc4.NewStaticKeyProvider([]byte("new secret"), "key-v2",
		rc4.WithOldKey([]byte("old secret"), "key-v1"),
	)
	if err != nil {
		panic(err)
	}
	newCodec, err := rc4.NewCodec(codec.JSON(), newProvider)
	if err != nil {
		panic(err)
	}

	var result string
	if err := newCodec.Decode(encoded, &result); err != nil {
		panic(err)
	}
	fmt.Println("Decoded with rotated provider:", result)

	// Output:
	// Decoded with rotated provider: secret-data
}
