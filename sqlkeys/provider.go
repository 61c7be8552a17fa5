// Package sqlkeys provides a KeyProvider backed by a SQL table.
//
// Keys are read from the table at construction time and cached in memory.
// The table holds one row per key; exactly one row is marked current and
// becomes the key for new encodings, the rest remain available for decoding.
//
// Usage:
//
//	db, err := sql.Open("sqlite3", "keys.db")
//	if err := sqlkeys.EnsureSchema(ctx, db, sqlkeys.DefaultTable); err != nil { ... }
//	provider, err := sqlkeys.New(ctx, db)
package sqlkeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	rc4 "github.com/rbaliyan/config-rc4"
)

// DefaultTable is the table used when WithTable is not given.
const DefaultTable = "rc4_keys"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrNoCurrentKey is returned when the table has no row marked current.
var ErrNoCurrentKey = errors.New("sqlkeys: no current key")

// Option configures a Provider.
type Option func(*options)

type options struct {
	table string
}

// WithTable selects the key table. The name must be a plain SQL identifier.
func WithTable(name string) Option {
	return func(o *options) {
		o.table = name
	}
}

func checkTable(name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("sqlkeys: invalid table name %q", name)
	}
	return nil
}

// EnsureSchema creates the key table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS `+table+` (
		id TEXT PRIMARY KEY,
		key_material BLOB NOT NULL,
		is_current BOOLEAN NOT NULL DEFAULT 0
	);`)
	if err != nil {
		return fmt.Errorf("sqlkeys: failed to create table %s: %w", table, err)
	}
	return nil
}

// PutKey stores a key. When current is true the key replaces the previous
// current key, which stays in the table for decoding.
func PutKey(ctx context.Context, db *sql.DB, table, id string, key []byte, current bool) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("sqlkeys: %w: key ID must not be empty", rc4.ErrInvalidKeyID)
	}
	if len(key) == 0 {
		return fmt.Errorf("sqlkeys: %w: key must not be empty", rc4.ErrInvalidKeySize)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlkeys: begin: %w", err)
	}
	defer tx.Rollback()

	if current {
		if _, err := tx.ExecContext(ctx, "UPDATE "+table+" SET is_current = 0 WHERE is_current = 1"); err != nil {
			return fmt.Errorf("sqlkeys: failed to clear current key: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO "+table+" (id, key_material, is_current) VALUES (?, ?, ?)",
		id, key, current); err != nil {
		return fmt.Errorf("sqlkeys: failed to insert key %q: %w", id, err)
	}
	return tx.Commit()
}

// New creates a KeyProvider from the rows of the key table.
//
// Exactly one row must be marked current. Keys are copied into a
// StaticKeyProvider; the database is not retained after construction.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*rc4.StaticKeyProvider, error) {
	o := options{table: DefaultTable}
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkTable(o.table); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT id, key_material, is_current FROM "+o.table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("sqlkeys: failed to query keys: %w", err)
	}
	defer rows.Close()

	type loadedKey struct {
		bytes []byte
		id    string
	}
	var (
		current *loadedKey
		old     []loadedKey
	)
	defer func() {
		if current != nil {
			clear(current.bytes)
		}
		for _, k := range old {
			clear(k.bytes)
		}
	}()

	for rows.Next() {
		var (
			k         loadedKey
			isCurrent bool
		)
		if err := rows.Scan(&k.id, &k.bytes, &isCurrent); err != nil {
			return nil, fmt.Errorf("sqlkeys: failed to scan key: %w", err)
		}
		if !isCurrent {
			old = append(old, k)
			continue
		}
		if current != nil {
			clear(k.bytes)
			return nil, fmt.Errorf("sqlkeys: keys %q and %q are both marked current", current.id, k.id)
		}
		current = &k
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlkeys: failed to read keys: %w", err)
	}
	if current == nil {
		return nil, ErrNoCurrentKey
	}

	keys := make([]rc4.Key, 0, 1+len(old))
	keys = append(keys, rc4.Key{ID: current.id, Bytes: current.bytes})
	for _, k := range old {
		keys = append(keys, rc4.Key{ID: k.id, Bytes: k.bytes})
	}

	provider, err := rc4.NewStaticKeyProviderFromKeys(keys...)
	if err != nil {
		return nil, fmt.Errorf("sqlkeys: %w", err)
	}
	return provider, nil
}
