package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storeLogPrefix = "db:store"

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// storageSchema creates the bridge_storage table. Values are stored as JSON
// text so the storage module can persist any bridge payload.
const storageSchema = `
CREATE TABLE IF NOT EXISTS bridge_storage (
    scope      TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    modified   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (scope, key)
)`

// KVStore persists key/value pairs for the storage bridge module. Keys are
// namespaced by scope so multiple web apps hosted by the same shell do not
// collide.
type KVStore struct {
	pool *pgxpool.Pool
}

// NewKVStore creates a KVStore on the given pool.
func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{pool: pool}
}

// EnsureSchema creates the storage table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info(fmt.Sprintf("%s - Ensuring storage schema", storeLogPrefix))
	if _, err := pool.Exec(ctx, storageSchema); err != nil {
		return fmt.Errorf("%s - failed to ensure schema: %w", storeLogPrefix, err)
	}
	return nil
}

// Get returns the stored value for scope/key, or ErrNotFound.
func (s *KVStore) Get(ctx context.Context, scope, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM bridge_storage WHERE scope = $1 AND key = $2`,
		scope, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s - get %s/%s: %w", storeLogPrefix, scope, key, err)
	}
	return value, nil
}

// Set stores value under scope/key, replacing any previous value.
func (s *KVStore) Set(ctx context.Context, scope, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bridge_storage (scope, key, value, modified)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (scope, key) DO UPDATE SET value = $3, modified = $4`,
		scope, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s - set %s/%s: %w", storeLogPrefix, scope, key, err)
	}
	return nil
}

// Delete removes the value under scope/key. Deleting a missing key is not an
// error.
func (s *KVStore) Delete(ctx context.Context, scope, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM bridge_storage WHERE scope = $1 AND key = $2`, scope, key)
	if err != nil {
		return fmt.Errorf("%s - delete %s/%s: %w", storeLogPrefix, scope, key, err)
	}
	return nil
}

// Keys lists the keys stored under scope, ordered for stable output.
func (s *KVStore) Keys(ctx context.Context, scope string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM bridge_storage WHERE scope = $1 ORDER BY key`, scope)
	if err != nil {
		return nil, fmt.Errorf("%s - keys %s: %w", storeLogPrefix, scope, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s - scan key: %w", storeLogPrefix, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s - iterate keys: %w", storeLogPrefix, err)
	}
	return keys, nil
}
