// Command rc4 encrypts and decrypts text with the RC4 stream cipher.
//
// Without a subcommand it runs an interactive session: it asks for a key and
// a message, prints the key and ciphertext bytes, then decrypts the
// ciphertext again and prints the recovered text.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
