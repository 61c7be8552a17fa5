package sqlkeys

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	rc4 "github.com/rbaliyan/config-rc4"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(context.Background(), db, DefaultTable); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return db
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := PutKey(ctx, db, DefaultTable, "key-1", []byte("Key"), true); err != nil {
		t.Fatalf("PutKey: %v", err)
	}

	provider, err := New(ctx, db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key, err := provider.CurrentKey()
	if err != nil {
		t.Fatalf("CurrentKey: %v", err)
	}
	if key.ID != "key-1" {
		t.Errorf("CurrentKey().ID: got %q, want %q", key.ID, "key-1")
	}
	if !bytes.Equal(key.Bytes, []byte("Key")) {
		t.Errorf("CurrentKey().Bytes: got %q, want %q", key.Bytes, "Key")
	}
}

func TestNewWithRotation(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := PutKey(ctx, db, DefaultTable, "key-v1", []byte("old secret"), true); err != nil {
		t.Fatal(err)
	}
	if err := PutKey(ctx, db, DefaultTable, "key-v2", []byte("new secret"), true); err != nil {
		t.Fatal(err)
	}

	provider, err := New(ctx, db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	current, err := provider.CurrentKey()
	if err != nil {
		t.Fatal(err)
	}
	if current.ID != "key-v2" {
		t.Errorf("CurrentKey().ID: got %q, want %q", current.ID, "key-v2")
	}

	old, err := provider.KeyByID("key-v1")
	if err != nil {
		t.Fatalf("KeyByID(key-v1): %v", err)
	}
	if !bytes.Equal(old.Bytes, []byte("old secret")) {
		t.Errorf("KeyByID(key-v1).Bytes: got %q", old.Bytes)
	}
}

func TestNewCustomTable(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := EnsureSchema(ctx, db, "app_keys"); err != nil {
		t.Fatal(err)
	}
	if err := PutKey(ctx, db, "app_keys", "app-1", []byte("app key"), true); err != nil {
		t.Fatal(err)
	}

	provider, err := New(ctx, db, WithTable("app_keys"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := provider.KeyByID("app-1"); err != nil {
		t.Errorf("KeyByID(app-1): %v", err)
	}
}

func TestNewNoCurrentKey(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := PutKey(ctx, db, DefaultTable, "key-1", []byte("Key"), false); err != nil {
		t.Fatal(err)
	}

	_, err := New(ctx, db)
	if !errors.Is(err, ErrNoCurrentKey) {
		t.Errorf("expected ErrNoCurrentKey, got %v", err)
	}
}

func TestNewEmptyTable(t *testing.T) {
	_, err := New(context.Background(), openDB(t))
	if !errors.Is(err, ErrNoCurrentKey) {
		t.Errorf("expected ErrNoCurrentKey, got %v", err)
	}
}

func TestNewMultipleCurrentKeys(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	for _, id := range []string{"a", "b"} {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO "+DefaultTable+" (id, key_material, is_current) VALUES (?, ?, 1)", id, []byte("k")); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := New(ctx, db); err == nil {
		t.Error("expected error for two current keys")
	}
}

func TestNewOversizedKey(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := PutKey(ctx, db, DefaultTable, "big", make([]byte, 257), true); err != nil {
		t.Fatal(err)
	}

	_, err := New(ctx, db)
	if !rc4.IsInvalidKeySize(err) {
		t.Errorf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestPutKeyValidation(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := PutKey(ctx, db, DefaultTable, "", []byte("k"), true); !rc4.IsInvalidKeyID(err) {
		t.Errorf("empty ID: expected ErrInvalidKeyID, got %v", err)
	}
	if err := PutKey(ctx, db, DefaultTable, "k", nil, true); !rc4.IsInvalidKeySize(err) {
		t.Errorf("empty key: expected ErrInvalidKeySize, got %v", err)
	}
	if err := PutKey(ctx, db, DefaultTable, "dup", []byte("k"), true); err != nil {
		t.Fatal(err)
	}
	if err := PutKey(ctx, db, DefaultTable, "dup", []byte("k2"), false); err == nil {
		t.Error("expected error for duplicate key ID")
	}
}

func TestInvalidTableName(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	for _, name := range []string{"", "keys; DROP TABLE x", "1keys", "a-b"} {
		if err := EnsureSchema(ctx, db, name); err == nil {
			t.Errorf("EnsureSchema(%q): expected error", name)
		}
		if _, err := New(ctx, db, WithTable(name)); err == nil {
			t.Errorf("New(WithTable(%q)): expected error", name)
		}
	}
}

func TestProviderWithCodecCipher(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)

	if err := PutKey(ctx, db, DefaultTable, "key-1", []byte("Key"), true); err != nil {
		t.Fatal(err)
	}
	provider, err := New(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	key, err := provider.CurrentKey()
	if err != nil {
		t.Fatal(err)
	}

	got, err := rc4.Cipher(key.Bytes, []byte("Plaintext"))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xbb, 0xf3, 0x16, 0xe8, 0xd9, 0x40, 0xaf, 0x0a, 0xd3}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}
