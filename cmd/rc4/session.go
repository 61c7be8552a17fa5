package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/unicode"
)

// runSession encrypts one message and decrypts it again, printing each step.
func (a *app) runSession(cmd *cobra.Command, message string, haveMessage, hexOut bool) error {
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	key, err := a.resolveKey(cmd.Context(), p)
	if err != nil {
		return err
	}
	defer clear(key.Bytes)

	if !haveMessage {
		if message, err = p.line("Enter the message: "); err != nil {
			return fmt.Errorf("reading message: %w", err)
		}
	}

	ciphertext, err := a.apply("encrypt", key, []byte(message))
	if err != nil {
		return err
	}
	decrypted, err := a.apply("decrypt", key, ciphertext)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if hexOut {
		fmt.Fprintf(out, "Key (hex): %s\n", hex.EncodeToString(key.Bytes))
		fmt.Fprintf(out, "Ciphertext (hex): %s\n", hex.EncodeToString(ciphertext))
	} else {
		fmt.Fprintf(out, "Key (decimal): %s\n", decimal(key.Bytes))
		fmt.Fprintf(out, "Ciphertext (decimal): %s\n", decimal(ciphertext))
	}
	fmt.Fprintf(out, "Decrypted: %s\n", text(decrypted))
	return nil
}

// decimal formats b as space-separated unsigned decimal bytes.
func decimal(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " ")
}

// text decodes b as UTF-8, replacing invalid sequences with U+FFFD.
func text(b []byte) string {
	s, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(s)
}

// readAllTrimmed reads r to EOF and strips surrounding whitespace.
func readAllTrimmed(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
