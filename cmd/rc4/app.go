package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	_ "github.com/mattn/go-sqlite3"
	rc4 "github.com/rbaliyan/config-rc4"
	"github.com/rbaliyan/config-rc4/internal/logging"
	"github.com/rbaliyan/config-rc4/sqlkeys"
	"github.com/spf13/cobra"
)

// flagKeyID is the key ID reported for keys given with --key or at the prompt.
const flagKeyID = "inline"

type app struct {
	key      string
	keyDB    string
	keyTable string
	keyID    string
	logLevel string

	logger hclog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		message string
		hexOut  bool
	)

	root := &cobra.Command{
		Use:   "rc4",
		Short: "Encrypt and decrypt text with RC4",
		Long: `Encrypt and decrypt text with the RC4 stream cipher.

Without a subcommand, rc4 asks for a key and a message, prints the key and
ciphertext bytes, then decrypts the ciphertext and prints the recovered text.
RC4 is broken; use it only for compatibility with existing data.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.NewLogger("rc4", a.logLevel, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSession(cmd, message, cmd.Flags().Changed("message"), hexOut)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.key, "key", "k", "", "Key text (prompted for when omitted)")
	pf.StringVar(&a.keyDB, "key-db", "", "SQLite database holding RC4 keys")
	pf.StringVar(&a.keyTable, "key-table", sqlkeys.DefaultTable, "Key table in --key-db")
	pf.StringVar(&a.keyID, "key-id", "", "Key ID in --key-db (defaults to the current key)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.Flags().StringVarP(&message, "message", "m", "", "Message text (prompted for when omitted)")
	root.Flags().BoolVar(&hexOut, "hex", false, "Print key and ciphertext bytes in hex instead of decimal")

	root.AddCommand(a.newEncryptCmd(), a.newDecryptCmd())
	return root
}

// resolveKey returns the key selected by flags, or asks p for one.
// p may be nil when prompting is not allowed.
func (a *app) resolveKey(ctx context.Context, p *prompter) (rc4.Key, error) {
	switch {
	case a.key != "" && a.keyDB != "":
		return rc4.Key{}, errors.New("--key and --key-db are mutually exclusive")
	case a.keyDB != "":
		return a.loadKey(ctx)
	case a.key != "":
		return rc4.Key{ID: flagKeyID, Bytes: []byte(a.key)}, nil
	case p != nil:
		secret, err := p.secret("Enter the key: ")
		if err != nil {
			return rc4.Key{}, fmt.Errorf("reading key: %w", err)
		}
		return rc4.Key{ID: flagKeyID, Bytes: secret}, nil
	default:
		return rc4.Key{}, errors.New("a key is required (--key or --key-db)")
	}
}

func (a *app) loadKey(ctx context.Context) (rc4.Key, error) {
	db, err := sql.Open("sqlite3", a.keyDB)
	if err != nil {
		return rc4.Key{}, fmt.Errorf("opening key database: %w", err)
	}
	defer db.Close()

	provider, err := sqlkeys.New(ctx, db, sqlkeys.WithTable(a.keyTable))
	if err != nil {
		return rc4.Key{}, err
	}
	defer provider.Destroy()

	if a.keyID != "" {
		return provider.KeyByID(a.keyID)
	}
	return provider.CurrentKey()
}

// apply runs the cipher and logs what was done, never the key itself.
func (a *app) apply(op string, key rc4.Key, input []byte) ([]byte, error) {
	out, err := rc4.Cipher(key.Bytes, input)
	if err != nil {
		a.logger.Error("cipher failed", "op", op, "key_id", key.ID, "error", err)
		return nil, err
	}
	a.logger.Debug("applied keystream", "op", op, "key_id", key.ID, "key_len", len(key.Bytes), "bytes", len(input))
	return out, nil
}
