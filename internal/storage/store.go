package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

// SQLiteStore keeps per-device key/value data in the mixin_storage table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store over an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Bucket returns the storage scoped to one native id.
func (s *SQLiteStore) Bucket(nativeID string) *Bucket {
	return &Bucket{store: s, nativeID: nativeID}
}

// NativeIDs returns every native id holding at least one key.
func (s *SQLiteStore) NativeIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT native_id FROM mixin_storage ORDER BY native_id`
	return s.queryStrings(ctx, query)
}

// Purge deletes everything stored for nativeID and returns the number of
// keys removed.
func (s *SQLiteStore) Purge(ctx context.Context, nativeID string) (int64, error) {
	if nativeID == "" {
		return 0, ErrInvalidKey
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM mixin_storage WHERE native_id = ?`, nativeID)
	if err != nil {
		return 0, fmt.Errorf("purging storage for %s: %w", nativeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging storage for %s: %w", nativeID, err)
	}
	return n, nil
}

func (s *SQLiteStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying storage: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning storage row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating storage rows: %w", err)
	}
	return out, nil
}

// Bucket is the sdk.Storage of a single device.
type Bucket struct {
	store    *SQLiteStore
	nativeID string
}

var _ sdk.Storage = (*Bucket)(nil)

// NativeID returns the id the bucket is scoped to.
func (b *Bucket) NativeID() string {
	return b.nativeID
}

// Get returns the value for key. A missing key is ("", false, nil).
func (b *Bucket) Get(ctx context.Context, key string) (string, bool, error) {
	if err := b.check(key); err != nil {
		return "", false, err
	}

	const query = `SELECT value FROM mixin_storage WHERE native_id = ? AND key = ?`
	var value string
	err := b.store.db.QueryRowContext(ctx, query, b.nativeID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s/%s: %w", b.nativeID, key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value for key.
func (b *Bucket) Set(ctx context.Context, key, value string) error {
	if err := b.check(key); err != nil {
		return err
	}

	const query = `INSERT INTO mixin_storage (native_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (native_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := b.store.db.ExecContext(ctx, query,
		b.nativeID, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", b.nativeID, key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (b *Bucket) Remove(ctx context.Context, key string) error {
	if err := b.check(key); err != nil {
		return err
	}

	const query = `DELETE FROM mixin_storage WHERE native_id = ? AND key = ?`
	if _, err := b.store.db.ExecContext(ctx, query, b.nativeID, key); err != nil {
		return fmt.Errorf("removing %s/%s: %w", b.nativeID, key, err)
	}
	return nil
}

// Keys returns the bucket's keys in lexical order.
func (b *Bucket) Keys(ctx context.Context) ([]string, error) {
	if b.nativeID == "" {
		return nil, ErrInvalidKey
	}
	const query = `SELECT key FROM mixin_storage WHERE native_id = ? ORDER BY key`
	return b.store.queryStrings(ctx, query, b.nativeID)
}

func (b *Bucket) check(key string) error {
	if b.nativeID == "" || key == "" {
		return ErrInvalidKey
	}
	return nil
}
