package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newEncryptCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt text and print the ciphertext as hex",
		Long: `Encrypt text with RC4 and print the ciphertext as hex.

The text comes from --message, or from standard input when --message is
not given. A trailing newline on standard input is not encrypted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.resolveKey(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer clear(key.Bytes)

			if !cmd.Flags().Changed("message") {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading message: %w", err)
				}
				message = strings.TrimRight(string(b), "\r\n")
			}

			ciphertext, err := a.apply("encrypt", key, []byte(message))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(ciphertext))
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text (read from stdin when omitted)")
	return cmd
}

func (a *app) newDecryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt [HEX]",
		Short: "Decrypt hex ciphertext and print the text",
		Long: `Decrypt hex-encoded RC4 ciphertext and print it as UTF-8 text.

The ciphertext comes from the argument, or from standard input when no
argument is given. Invalid UTF-8 is shown as U+FFFD.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.resolveKey(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer clear(key.Bytes)

			var encoded string
			if len(args) == 1 {
				encoded = args[0]
			} else if encoded, err = readAllTrimmed(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("reading ciphertext: %w", err)
			}

			ciphertext, err := hex.DecodeString(strings.TrimSpace(encoded))
			if err != nil {
				return fmt.Errorf("decoding ciphertext: %w", err)
			}

			plaintext, err := a.apply("decrypt", key, ciphertext)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text(plaintext))
			return nil
		},
	}
}
